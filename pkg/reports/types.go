package reports

// CostBenefitRow is one project-month line of the cost-benefit report.
// TotalCost and Profit are computed by the query; machine depreciation and
// finance fees are reported but excluded from TotalCost.
type CostBenefitRow struct {
	CompanyName      string  `json:"companyName"`
	ProjectName      string  `json:"projectName"`
	OutputValue      float64 `json:"outputValue"`
	Tax              float64 `json:"tax"`
	MaterialCost     float64 `json:"materialCost"`
	MachineCost      float64 `json:"machineCost"`
	MachineDeprCost  float64 `json:"machineDeprCost"`
	LaborMgmtCost    float64 `json:"laborMgmtCost"`
	LaborProjectCost float64 `json:"laborProjectCost"`
	OtherCost        float64 `json:"otherCost"`
	FinanceFee       float64 `json:"financeFee"`
	TotalCost        float64 `json:"totalCost"`
	NonprodIncome    float64 `json:"nonprodIncome"`
	NonprodExpense   float64 `json:"nonprodExpense"`
	Profit           float64 `json:"profit"`
	IncomeTax        float64 `json:"incomeTax"`
	AssessProfit     float64 `json:"assessProfit"`
	Remark           string  `json:"remark"`
}

// CostBenefitReport wraps the report rows for the wire
type CostBenefitReport struct {
	Rows []CostBenefitRow `json:"rows"`
}

// ApTotals is an accrual/paid/balance triple
type ApTotals struct {
	AccrualTotal float64 `json:"accrualTotal"`
	PaidTotal    float64 `json:"paidTotal"`
	Balance      float64 `json:"balance"`
}

// VendorLine is one vendor and business-type line under a project
type VendorLine struct {
	VendorName   string  `json:"vendorName"`
	BizType      string  `json:"bizType"`
	AccrualTotal float64 `json:"accrualTotal"`
	PaidTotal    float64 `json:"paidTotal"`
	Balance      float64 `json:"balance"`
}

// ProjectApSummary groups vendor lines under one project with a subtotal
type ProjectApSummary struct {
	ProjectName string       `json:"projectName"`
	Vendors     []VendorLine `json:"vendors"`
	Subtotal    ApTotals     `json:"subtotal"`
}

// ApSummaryReport is the full accounts-payable summary for one company
// and date range
type ApSummaryReport struct {
	Projects   []ProjectApSummary `json:"projects"`
	GrandTotal ApTotals           `json:"grandTotal"`
}
