package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/raulk/clock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/jurychain-api/api"
	"github.com/linesmerrill/jurychain-api/chain"
	"github.com/linesmerrill/jurychain-api/config"
	"github.com/linesmerrill/jurychain-api/databases"
	"github.com/linesmerrill/jurychain-api/jury"
	"github.com/linesmerrill/jurychain-api/metrics"
	"github.com/linesmerrill/jurychain-api/models"
	"github.com/linesmerrill/jurychain-api/security"
)

// maxBodyBytes caps request bodies; the largest legal submission is well below it
const maxBodyBytes = 64 << 10

// Case exported for testing purposes
type Case struct {
	DB              databases.CaseDatabase
	Panel           jury.Panel
	Feed            Broadcaster
	Network         chain.Network
	TreasuryAddress string
	Clock           clock.Clock
}

func (c Case) now() time.Time {
	if c.Clock == nil {
		return time.Now()
	}
	return c.Clock.Now()
}

func (c Case) broadcast(event string, data interface{}) {
	if c.Feed != nil {
		c.Feed.Broadcast(event, data)
	}
}

// SubmitCaseHandler sanitizes and validates a dispute, asks the jury for a verdict and
// stores the resulting case
func (c Case) SubmitCaseHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitCaseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	claimant := security.Sanitize(req.ClaimantName)
	respondent := security.Sanitize(req.RespondentName)
	description := security.Sanitize(req.Description)
	evidenceURL := strings.TrimSpace(req.EvidenceURL)

	errs := security.ValidateCaseSubmission(claimant, respondent, description)
	if evidenceURL != "" && !security.IsValidEvidenceURL(evidenceURL) {
		errs = append(errs, "Evidence URL must be a valid http or https link")
	}
	if len(errs) > 0 {
		zap.S().Infow("rejected case submission",
			"errors", errs,
			"requestId", api.RequestID(r.Context()))
		writeJSON(w, http.StatusBadRequest, models.ValidationErrorResponse{
			Error:  "invalid case submission",
			Errors: errs,
		})
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	jurors, err := c.Panel.Deliberate(ctx, description)
	if err != nil {
		config.ErrorStatus("failed to get juror verdicts", http.StatusInternalServerError, w, err)
		return
	}
	consensus, err := jury.ComputeConsensus(jurors)
	if err != nil {
		config.ErrorStatus("failed to compute consensus", http.StatusInternalServerError, w, err)
		return
	}

	now := c.now()
	cs := models.Case{
		ID:           security.NewCaseID(now),
		Claimant:     claimant,
		Respondent:   respondent,
		Description:  description,
		EvidenceURL:  evidenceURL,
		Jurors:       jurors,
		FinalVerdict: consensus.Verdict,
		Reasoning:    consensus.Reasoning,
		CreatedAt:    primitive.NewDateTimeFromTime(now),
	}

	if err := c.DB.Save(ctx, &cs); err != nil {
		config.ErrorStatus("failed to submit case", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("case submitted",
		"caseId", cs.ID,
		"verdict", cs.FinalVerdict,
		"requestId", api.RequestID(r.Context()))
	metrics.CaseSubmitted(cs.FinalVerdict)
	c.broadcast(EventCaseSubmitted, cs.Summary())

	writeJSON(w, http.StatusCreated, cs)
}

// GetCaseHandler returns a single case by its ID
func (c Case) GetCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	zap.S().Debugf("case_id: %v", caseID)

	if !security.IsValidCaseID(caseID) {
		config.ErrorStatus("case not found", http.StatusNotFound, w, fmt.Errorf("invalid case id %q", caseID))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := c.DB.FindOne(ctx, bson.M{"_id": caseID})
	if errors.Is(err, databases.ErrNotFound) {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}
	if err != nil {
		config.ErrorStatus("failed to get case", http.StatusInternalServerError, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dbResp)
}

// GetCasesHandler lists every case, newest first
func (c Case) GetCasesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := c.DB.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		config.ErrorStatus("failed to fetch cases", http.StatusInternalServerError, w, err)
		return
	}

	// The frontend expects an array even when there are no cases
	resp := models.CaseListResponse{Cases: make([]models.CaseSummary, 0, len(dbResp))}
	for _, cs := range dbResp {
		resp.Cases = append(resp.Cases, cs.Summary())
	}

	writeJSON(w, http.StatusOK, resp)
}

// StoreVerdictHandler attaches a transaction hash to a case. The hash is only checked
// for its format; nothing is looked up on chain. A request without a hash changes
// nothing and still succeeds.
func (c Case) StoreVerdictHandler(w http.ResponseWriter, r *http.Request) {
	var req models.StoreVerdictRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	req.CaseID = strings.TrimSpace(req.CaseID)
	req.TransactionHash = strings.TrimSpace(req.TransactionHash)

	resp := models.StoreVerdictResponse{
		Success:         true,
		Message:         fmt.Sprintf("Verdict stored on %s", c.Network.Name),
		TransactionHash: req.TransactionHash,
		CaseID:          req.CaseID,
		Verdict:         security.Sanitize(req.Verdict),
	}

	if req.TransactionHash == "" {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	if !security.IsValidTxHash(req.TransactionHash) {
		config.ErrorStatus("invalid transaction hash", http.StatusBadRequest, w, fmt.Errorf("%q is not a transaction hash", req.TransactionHash))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cs, err := c.DB.FindOne(ctx, bson.M{"_id": req.CaseID})
	if errors.Is(err, databases.ErrNotFound) {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}
	if err != nil {
		config.ErrorStatus("failed to get case", http.StatusInternalServerError, w, err)
		return
	}
	if cs.StoredOnchain {
		config.ErrorStatus("verdict already stored on chain", http.StatusForbidden, w, fmt.Errorf("case %s already has proof %s", cs.ID, cs.TransactionHash))
		return
	}

	now := primitive.NewDateTimeFromTime(c.now())
	matched, err := c.DB.UpdateOne(ctx,
		bson.M{"_id": req.CaseID, "storedOnchain": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{
			"transactionHash":  req.TransactionHash,
			"storedOnchain":    true,
			"onchainTimestamp": now,
		}})
	if err != nil {
		config.ErrorStatus("failed to store verdict", http.StatusInternalServerError, w, err)
		return
	}
	if matched == 0 {
		// another request attached a proof between the read and the update
		config.ErrorStatus("verdict already stored on chain", http.StatusForbidden, w, fmt.Errorf("case %s already has a proof", req.CaseID))
		return
	}

	zap.S().Infow("proof attached",
		"caseId", req.CaseID,
		"transactionHash", req.TransactionHash,
		"requestId", api.RequestID(r.Context()))
	metrics.ProofAttached()

	cs.TransactionHash = req.TransactionHash
	cs.StoredOnchain = true
	cs.OnchainTimestamp = now
	c.broadcast(EventProofAttached, cs.Summary())

	resp.ExplorerURL = c.Network.TxURL(req.TransactionHash)
	writeJSON(w, http.StatusOK, resp)
}

// StatsHandler returns the dashboard counters
func (c Case) StatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	total, err := c.DB.CountDocuments(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to count cases", http.StatusInternalServerError, w, err)
		return
	}

	startOfDay := c.now().UTC().Truncate(24 * time.Hour)
	today, err := c.DB.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": primitive.NewDateTimeFromTime(startOfDay)}})
	if err != nil {
		config.ErrorStatus("failed to count cases", http.StatusInternalServerError, w, err)
		return
	}

	anchored, err := c.DB.CountDocuments(ctx, bson.M{"storedOnchain": true})
	if err != nil {
		config.ErrorStatus("failed to count cases", http.StatusInternalServerError, w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.CaseStats{
		TotalCases:    total,
		ResolvedToday: today,
		AnchoredCases: anchored,
		ActiveJurors:  c.Panel.Size(),
	})
}

// ChainInfoHandler tells a wallet client where and how much to send to anchor a verdict
func (c Case) ChainInfoHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.ChainInfo{
		ChainID:         c.Network.ChainID,
		ChainName:       c.Network.Name,
		RPCURL:          c.Network.RPCURL,
		ExplorerURL:     c.Network.ExplorerURL,
		Symbol:          c.Network.Symbol,
		Decimals:        c.Network.Decimals,
		TreasuryAddress: c.TreasuryAddress,
		TreasuryURL:     c.Network.AddressURL(c.TreasuryAddress),
		ProofValueWei:   chain.ProofValue.String(),
		Gas:             chain.TransferGas,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
