package api

// Wire codes preserved from the original contract. The 30xxx range covers
// auth and admin failures, 10xxx covers report parameter validation, and
// 20xxx covers database and internal errors.
const (
	CodeInvalidJSON           = 30000
	CodeInvalidCredentials    = 30001
	CodeForbidden             = 30002
	CodeInvalidParams         = 30003
	CodeUserNotFound          = 30004
	CodeMissingOrInvalidToken = 30005
	CodeInvalidToken          = 30006
	CodeUserAlreadyExists     = 30007

	CodeMissingParams    = 10000
	CodeInvalidCompanyID = 10001
	CodeInvalidDate      = 10002

	CodeInternal      = 20000
	CodeDBQueryFailed = 20001
	CodeDBWriteFailed = 20004
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type companyAccessRequest struct {
	TargetUserID int64 `json:"targetUserId"`
	CompanyID    int64 `json:"companyId"`
	Allow        bool  `json:"allow"`
}

type permissionChangeRequest struct {
	TargetUserID int64 `json:"targetUserId"`
	CompanyID    int64 `json:"companyId"`
	Read         bool  `json:"read"`
	Write        bool  `json:"write"`
}

type createUserRequest struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

type createCompanyRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type createProjectRequest struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"companyId"`
	Name      string `json:"name"`
}
