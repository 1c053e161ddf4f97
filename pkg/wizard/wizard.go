// Package wizard implements the multi-step complaint submission flow.
//
// State lives server-side behind an opaque session id; each step only
// advances when every key of the previous step is present, so a complaint is
// never materialized from partial data. The final step commits complainant,
// complaint, status history and attachment rows in one transaction.
package wizard

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/empresasintegra/leykarin/pkg/attachment"
	"github.com/empresasintegra/leykarin/pkg/metrics"
	"github.com/empresasintegra/leykarin/pkg/model"
)

var (
	// ErrIncompleteSession means a prerequisite step is missing; the client
	// must restart at step 1. Partially entered data is discarded on purpose.
	ErrIncompleteSession = errors.New("datos incompletos, debe completar los pasos anteriores")
	ErrSessionNotFound   = errors.New("session not found")
	ErrCompanyUnknown    = errors.New("empresa no válida")
)

// State is the explicit, serializable wizard state passed between steps.
// JSON keys mirror the session layout of the web client.
type State struct {
	CompanyID      string              `json:"empresa_id,omitempty"`
	ItemID         string              `json:"denuncia_item_id,omitempty"`
	ItemStatement  string              `json:"denuncia_item_nombre,omitempty"`
	CategoryID     string              `json:"denuncia_categoria_id,omitempty"`
	CategoryName   string              `json:"denuncia_categoria_nombre,omitempty"`
	RelationID     string              `json:"denuncia_relacion_id,omitempty"`
	TimeBucketID   string              `json:"denuncia_tiempo_id,omitempty"`
	Description    string              `json:"denuncia_descripcion,omitempty"`
	RelationDetail string              `json:"descripcion_relacion,omitempty"`
	Staged         []attachment.Staged `json:"archivos_temp_paths,omitempty"`
	Code           string              `json:"codigo,omitempty"`
}

func (s *State) initialized() bool    { return s != nil && s.CompanyID != "" }
func (s *State) itemSelected() bool   { return s.initialized() && s.ItemID != "" && s.CategoryID != "" }
func (s *State) detailsCollected() bool {
	return s.itemSelected() && s.RelationID != "" && s.TimeBucketID != "" && s.Description != ""
}

// SessionStore persists wizard state behind an opaque session id. The store
// must be read-modify-write consistent for one user's sequential requests;
// concurrent tabs racing on the same session are last-write-wins.
type SessionStore interface {
	Get(ctx context.Context, sid string) (*State, error)
	Put(ctx context.Context, sid string, state *State) error
	Delete(ctx context.Context, sid string) error
}

// Catalog resolves the reference entities a complaint links to.
type Catalog interface {
	CompanyByName(ctx context.Context, name string) (*model.Company, error)
	Item(ctx context.Context, id string) (*model.Item, error)
	Relation(ctx context.Context, id string) (*model.CompanyRelation, error)
	TimeBucket(ctx context.Context, id string) (*model.TimeBucket, error)
}

// Complainants is the slice of complainant storage the wizard needs.
type Complainants interface {
	FindByRUT(ctx context.Context, rut string) (*model.Complainant, error)
	PublicIDExists(ctx context.Context, id string) (bool, error)
}

// Commit carries everything the final step persists atomically.
type Commit struct {
	Complainant *model.Complainant
	Complaint   *model.Complaint
	Attachments []model.Attachment
}

// Complaints is the slice of complaint storage the wizard needs.
type Complaints interface {
	CodeExists(ctx context.Context, code string) (bool, error)
	Commit(ctx context.Context, commit *Commit) error
}

type Wizard struct {
	sessions     SessionStore
	catalog      Catalog
	complainants Complainants
	complaints   Complaints
	pipeline     *attachment.Pipeline
	stager       *attachment.Stager
	logger       *zap.Logger
}

func New(
	sessions SessionStore,
	catalog Catalog,
	complainants Complainants,
	complaints Complaints,
	pipeline *attachment.Pipeline,
	stager *attachment.Stager,
	logger *zap.Logger,
) *Wizard {
	return &Wizard{
		sessions:     sessions,
		catalog:      catalog,
		complainants: complainants,
		complaints:   complaints,
		pipeline:     pipeline,
		stager:       stager,
		logger:       logger,
	}
}

func (w *Wizard) state(ctx context.Context, sid string) (*State, error) {
	state, err := w.sessions.Get(ctx, sid)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, ErrIncompleteSession
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Initialize records the selected company and opens the wizard session.
func (w *Wizard) Initialize(ctx context.Context, sid, companyName string) error {
	name := strings.Join(strings.Fields(companyName), " ")
	if name == "" {
		return NewValidationError("empresa", "empresa es requerida")
	}

	company, err := w.catalog.CompanyByName(ctx, name)
	if err != nil {
		return err
	}
	if company == nil {
		metrics.WizardSteps.WithLabelValues("initialize", "rejected").Inc()
		return ErrCompanyUnknown
	}

	state := &State{CompanyID: company.ID.String()}
	if err := w.sessions.Put(ctx, sid, state); err != nil {
		return err
	}
	metrics.WizardSteps.WithLabelValues("initialize", "ok").Inc()
	return nil
}

// SelectItem records the chosen complaint type and its category.
func (w *Wizard) SelectItem(ctx context.Context, sid, itemID string) (*model.Item, error) {
	state, err := w.state(ctx, sid)
	if err != nil {
		return nil, err
	}
	if !state.initialized() {
		return nil, ErrIncompleteSession
	}

	item, err := w.catalog.Item(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.Category == nil {
		metrics.WizardSteps.WithLabelValues("items", "rejected").Inc()
		return nil, NewValidationError("denuncia_item", "tipo de denuncia no válido")
	}

	state.ItemID = item.ID.String()
	state.ItemStatement = item.Statement
	state.CategoryID = item.Category.ID.String()
	state.CategoryName = item.Category.Name
	if err := w.sessions.Put(ctx, sid, state); err != nil {
		return nil, err
	}
	metrics.WizardSteps.WithLabelValues("items", "ok").Inc()
	return item, nil
}

// DetailsInput is the payload of the details step. Staged attachments were
// already validated and staged by the handler; an empty list is valid.
type DetailsInput struct {
	RelationID     string
	TimeBucketID   string
	Description    string
	RelationDetail string
	Staged         []attachment.Staged
}

// SubmitDetails validates relation, time bucket and description, applying the
// conditional elaboration rule for the "Otro" relation.
func (w *Wizard) SubmitDetails(ctx context.Context, sid string, input DetailsInput) error {
	state, err := w.state(ctx, sid)
	if err != nil {
		return err
	}
	if !state.itemSelected() {
		return ErrIncompleteSession
	}

	fields := NewFieldErrors()

	relation, err := w.catalog.Relation(ctx, input.RelationID)
	if err != nil {
		return err
	}
	if relation == nil {
		fields.Add("denuncia_relacion", "relación con empresa no válida")
	}

	timeBucket, err := w.catalog.TimeBucket(ctx, input.TimeBucketID)
	if err != nil {
		return err
	}
	if timeBucket == nil {
		fields.Add("denuncia_tiempo", "tiempo de denuncia no válido")
	}

	description := strings.TrimSpace(input.Description)
	switch {
	case description == "":
		fields.Add("descripcion", "la descripción es obligatoria")
	case len([]rune(description)) < 50:
		fields.Add("descripcion", "la descripción debe tener al menos 50 caracteres")
	case len([]rune(description)) > 2000:
		fields.Add("descripcion", "la descripción no puede exceder 2000 caracteres")
	}

	detail := strings.TrimSpace(input.RelationDetail)
	if relation != nil && relation.IsOther() {
		if detail == "" {
			fields.Add("descripcion_relacion", "debe especificar su relación con la empresa")
		} else if len([]rune(detail)) < 3 {
			fields.Add("descripcion_relacion", "la descripción debe tener al menos 3 caracteres")
		} else if len([]rune(detail)) > 50 {
			fields.Add("descripcion_relacion", "la descripción no puede exceder 50 caracteres")
		}
	} else {
		// Only the "Otro" variant keeps the elaboration.
		detail = ""
	}

	if err := fields.Err(); err != nil {
		metrics.WizardSteps.WithLabelValues("wizard", "rejected").Inc()
		return err
	}

	state.RelationID = input.RelationID
	state.TimeBucketID = input.TimeBucketID
	state.Description = description
	state.RelationDetail = detail
	state.Staged = input.Staged
	if err := w.sessions.Put(ctx, sid, state); err != nil {
		return err
	}
	metrics.WizardSteps.WithLabelValues("wizard", "ok").Inc()
	return nil
}

// Abort drops the session state and every staged file.
func (w *Wizard) Abort(ctx context.Context, sid string) error {
	if err := w.stager.Discard(sid); err != nil {
		w.logger.Warn("failed to discard staged files", zap.String("session", sid), zap.Error(err))
	}
	return w.sessions.Delete(ctx, sid)
}

// Confirmation returns the code stored for the one-time confirmation page and
// clears the session afterwards.
func (w *Wizard) Confirmation(ctx context.Context, sid string) (string, error) {
	state, err := w.state(ctx, sid)
	if err != nil {
		return "", err
	}
	if state.Code == "" {
		return "", ErrIncompleteSession
	}
	code := state.Code
	if err := w.sessions.Delete(ctx, sid); err != nil {
		return "", err
	}
	return code, nil
}
