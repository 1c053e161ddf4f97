package wizard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/empresasintegra/leykarin/pkg/identifier"
	"github.com/empresasintegra/leykarin/pkg/metrics"
	"github.com/empresasintegra/leykarin/pkg/model"
)

// Result is what the confirmation page needs: the complaint code, or the
// complainant's public id when the submission was identified. CategoryID lets
// the caller resolve the admins to notify.
type Result struct {
	Code       string
	Anonymous  bool
	CategoryID string
	Complaint  *model.Complaint
}

// RegisterComplainant is the terminal wizard step. It requires every key of
// the previous steps, resolves the complainant, generates a unique code,
// promotes staged attachments to object storage and persists everything in
// one transaction. If the transaction fails, uploaded objects are deleted
// best-effort and nothing is recorded.
func (w *Wizard) RegisterComplainant(ctx context.Context, sid string, input ComplainantInput) (*Result, error) {
	state, err := w.state(ctx, sid)
	if err != nil {
		return nil, err
	}
	if !state.detailsCollected() {
		metrics.WizardSteps.WithLabelValues("user", "rejected").Inc()
		return nil, ErrIncompleteSession
	}

	complainant, err := w.resolveComplainant(ctx, input)
	if err != nil {
		metrics.WizardSteps.WithLabelValues("user", "rejected").Inc()
		return nil, err
	}

	code, err := identifier.Code(ctx, w.complaints.CodeExists)
	if err != nil {
		return nil, err
	}

	companyID, err := uuid.Parse(state.CompanyID)
	if err != nil {
		return nil, ErrIncompleteSession
	}
	itemID, err := uuid.Parse(state.ItemID)
	if err != nil {
		return nil, ErrIncompleteSession
	}
	relationID, err := uuid.Parse(state.RelationID)
	if err != nil {
		return nil, ErrIncompleteSession
	}
	timeBucketID, err := uuid.Parse(state.TimeBucketID)
	if err != nil {
		return nil, ErrIncompleteSession
	}

	complaint := &model.Complaint{
		Code:           code,
		CompanyID:      companyID,
		ItemID:         itemID,
		RelationID:     relationID,
		TimeBucketID:   timeBucketID,
		Description:    state.Description,
		RelationDetail: state.RelationDetail,
		Status:         model.StatusPendiente,
	}

	// Attachments are uploaded before the transaction; object storage is not
	// transactional with the database, so a failed commit triggers a
	// best-effort cleanup of the freshly uploaded objects.
	attachments, uploadedKeys, err := w.pipeline.Promote(ctx, code, state.Staged)
	if err != nil {
		return nil, fmt.Errorf("failed to promote attachments: %w", err)
	}

	commit := &Commit{
		Complainant: complainant,
		Complaint:   complaint,
		Attachments: attachments,
	}
	if err := w.complaints.Commit(ctx, commit); err != nil {
		w.pipeline.Rollback(ctx, uploadedKeys)
		return nil, fmt.Errorf("failed to commit complaint: %w", err)
	}

	if err := w.stager.Discard(sid); err != nil {
		w.logger.Warn("failed to discard staged files", zap.String("session", sid), zap.Error(err))
	}

	// The confirmation code is the complaint code for anonymous submissions
	// and the complainant's public id for identified ones.
	confirmation := code
	if !complainant.Anonymous {
		confirmation = complainant.PublicID
	}
	if err := w.sessions.Put(ctx, sid, &State{Code: confirmation}); err != nil {
		w.logger.Warn("failed to store confirmation code", zap.String("session", sid), zap.Error(err))
	}

	metrics.WizardSteps.WithLabelValues("user", "ok").Inc()
	metrics.ComplaintsTotal.WithLabelValues(state.CompanyID, state.CategoryName, string(model.StatusPendiente)).Inc()

	complaint.Complainant = complainant
	return &Result{
		Code:       confirmation,
		Anonymous:  complainant.Anonymous,
		CategoryID: state.CategoryID,
		Complaint:  complaint,
	}, nil
}
