// Package docs JuryChain API.
//
// Documentation of JuryChain API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//     Host: https://jurychain-api.herokuapp.com
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//
// swagger:meta
package docs

import (
	"github.com/linesmerrill/jurychain-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route POST /api/v1/submitCase cases submitCase
// Submits a dispute and returns the jury's verdict.
// responses:
//   201: caseResponse
//   400: validationErrorResponse
//   429: errorResponse

// swagger:parameters submitCase
type submitCaseParamsWrapper struct {
	// in:body
	Body models.SubmitCaseRequest
}

// swagger:route GET /api/v1/getCase/{case_id} cases getCase
// Gets a single case by ID.
// responses:
//   200: caseResponse
//   404: errorResponse

// swagger:parameters getCase
type getCaseParamsWrapper struct {
	// in:path
	CaseID string `json:"case_id"`
}

// A full case with its jurors and verdict
// swagger:response caseResponse
type caseResponseWrapper struct {
	// in:body
	Body models.Case
}

// swagger:route GET /api/v1/getCases cases getCases
// Lists every case, newest first.
// responses:
//   200: caseListResponse

// swagger:response caseListResponse
type caseListResponseWrapper struct {
	// in:body
	Body models.CaseListResponse
}

// swagger:route POST /api/v1/storeVerdict cases storeVerdict
// Attaches a transaction hash to a case.
// responses:
//   200: storeVerdictResponse
//   400: errorResponse
//   403: errorResponse
//   404: errorResponse

// swagger:parameters storeVerdict
type storeVerdictParamsWrapper struct {
	// in:body
	Body models.StoreVerdictRequest
}

// swagger:response storeVerdictResponse
type storeVerdictResponseWrapper struct {
	// in:body
	Body models.StoreVerdictResponse
}

// swagger:route GET /api/v1/stats cases stats
// Dashboard counters.
// responses:
//   200: statsResponse

// swagger:response statsResponse
type statsResponseWrapper struct {
	// in:body
	Body models.CaseStats
}

// swagger:route GET /api/v1/chain chain chainInfo
// The network and treasury used to anchor verdicts.
// responses:
//   200: chainInfoResponse

// swagger:response chainInfoResponse
type chainInfoResponseWrapper struct {
	// in:body
	Body models.ChainInfo
}

// swagger:response validationErrorResponse
type validationErrorResponseWrapper struct {
	// in:body
	Body models.ValidationErrorResponse
}

// swagger:response errorResponse
type errorResponseWrapper struct {
	// in:body
	Body models.ErrorMessageResponse
}
