package finance

// Company is a reporting entity
type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Project belongs to exactly one company
type Project struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"companyId"`
	Name      string `json:"name"`
}

// CostBenefitEntry is one project-month of cost and benefit figures
type CostBenefitEntry struct {
	CompanyID        int64   `json:"companyId"`
	ProjectID        int64   `json:"projectId"`
	Month            string  `json:"month"`
	OutputValue      float64 `json:"outputValue"`
	Tax              float64 `json:"tax"`
	MaterialCost     float64 `json:"materialCost"`
	MachineCost      float64 `json:"machineCost"`
	MachineDeprCost  float64 `json:"machineDeprCost"`
	LaborMgmtCost    float64 `json:"laborMgmtCost"`
	LaborProjectCost float64 `json:"laborProjectCost"`
	OtherCost        float64 `json:"otherCost"`
	FinanceFee       float64 `json:"financeFee"`
	NonprodIncome    float64 `json:"nonprodIncome"`
	NonprodExpense   float64 `json:"nonprodExpense"`
	IncomeTax        float64 `json:"incomeTax"`
	AssessProfit     float64 `json:"assessProfit"`
	Remark           string  `json:"remark"`
}

// ApAccrual is one accounts-payable accrual line
type ApAccrual struct {
	ID         int64   `json:"id"`
	CompanyID  int64   `json:"companyId"`
	ProjectID  int64   `json:"projectId"`
	VendorName string  `json:"vendorName"`
	BizType    string  `json:"bizType"`
	Amount     float64 `json:"amount"`
	BizDate    string  `json:"bizDate"`
}

// ApPayment is one accounts-payable payment line
type ApPayment struct {
	ID         int64   `json:"id"`
	CompanyID  int64   `json:"companyId"`
	ProjectID  int64   `json:"projectId"`
	VendorName string  `json:"vendorName"`
	BizType    string  `json:"bizType"`
	Amount     float64 `json:"amount"`
	PayDate    string  `json:"payDate"`
}
