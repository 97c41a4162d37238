package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Case holds the structure for the cases collection in mongo. The case ID doubles
// as the document key.
type Case struct {
	ID               string             `json:"caseId" bson:"_id"`
	Claimant         string             `json:"claimant" bson:"claimant"`
	Respondent       string             `json:"respondent" bson:"respondent"`
	Description      string             `json:"description" bson:"description"`
	EvidenceURL      string             `json:"evidenceUrl,omitempty" bson:"evidenceUrl,omitempty"`
	Jurors           []Juror            `json:"jurors" bson:"jurors"`
	FinalVerdict     string             `json:"finalVerdict" bson:"finalVerdict"`
	Reasoning        string             `json:"reasoning" bson:"reasoning"`
	CreatedAt        primitive.DateTime `json:"createdAt" bson:"createdAt"`
	TransactionHash  string             `json:"transactionHash,omitempty" bson:"transactionHash,omitempty"`
	StoredOnchain    bool               `json:"storedOnchain,omitempty" bson:"storedOnchain,omitempty"`
	OnchainTimestamp primitive.DateTime `json:"onchainTimestamp,omitempty" bson:"onchainTimestamp,omitempty"`
}

// Juror is a single juror opinion attached to a case
type Juror struct {
	Name    string `json:"name" bson:"name"`
	Verdict string `json:"verdict" bson:"verdict"` // "Claimant" or "Respondent"
	Reason  string `json:"reason" bson:"reason"`
}

// CaseSummary is the list projection of a case
type CaseSummary struct {
	ID              string             `json:"caseId"`
	Claimant        string             `json:"claimant"`
	Respondent      string             `json:"respondent"`
	Verdict         string             `json:"verdict"`
	CreatedAt       primitive.DateTime `json:"createdAt"`
	StoredOnchain   bool               `json:"storedOnchain,omitempty"`
	TransactionHash string             `json:"transactionHash,omitempty"`
}

// Summary projects a case into its list form
func (c Case) Summary() CaseSummary {
	return CaseSummary{
		ID:              c.ID,
		Claimant:        c.Claimant,
		Respondent:      c.Respondent,
		Verdict:         c.FinalVerdict,
		CreatedAt:       c.CreatedAt,
		StoredOnchain:   c.StoredOnchain,
		TransactionHash: c.TransactionHash,
	}
}

// CaseListResponse wraps the case list returned by the getCases endpoint
type CaseListResponse struct {
	Cases []CaseSummary `json:"cases"`
}

// SubmitCaseRequest is the body accepted by the submitCase endpoint
type SubmitCaseRequest struct {
	ClaimantName   string `json:"claimantName"`
	RespondentName string `json:"respondentName"`
	Description    string `json:"description"`
	EvidenceURL    string `json:"evidenceUrl,omitempty"`
}

// StoreVerdictRequest is the body accepted by the storeVerdict endpoint
type StoreVerdictRequest struct {
	CaseID          string `json:"caseId"`
	Verdict         string `json:"verdict"`
	TransactionHash string `json:"transactionHash,omitempty"`
}

// StoreVerdictResponse is returned once a proof has been attached
type StoreVerdictResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	TransactionHash string `json:"transactionHash,omitempty"`
	CaseID          string `json:"caseId"`
	Verdict         string `json:"verdict"`
	ExplorerURL     string `json:"explorerUrl,omitempty"`
}

// ValidationErrorResponse lists every rule a submission broke
type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}
