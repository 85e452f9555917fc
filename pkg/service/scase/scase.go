// Package scase is the REST client for the autotest case/step endpoints.
// It owns request shaping and response unwrapping; tree semantics live in
// steptree and tstep.
package scase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/krun-tools/stepcraft/pkg/httpclient"
	"github.com/krun-tools/stepcraft/pkg/model/mcase"
	"github.com/krun-tools/stepcraft/pkg/model/mstep"
	"github.com/krun-tools/stepcraft/pkg/model/mvar"
	"github.com/krun-tools/stepcraft/pkg/steptree"
	"github.com/krun-tools/stepcraft/pkg/translate/tstep"
)

var ErrNoIdentifier = errors.New("either a case id or a case code is required")

type Service struct {
	client  httpclient.HttpClient
	baseURL string
}

func New(client httpclient.HttpClient, baseURL string) *Service {
	return &Service{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Total   int             `json:"total"`
}

// LoadedTree is a mapped load response: the roots plus the counter summary
// the backend appends after the last root record. Case is the owning case's
// metadata when the response carried it.
type LoadedTree struct {
	Case    *mcase.Case
	Roots   []*steptree.StepNode
	Counter mstep.Counter
}

// GetStepTree loads a case's step tree by id or code. A failed load leaves
// the caller with nothing rather than a partial tree: either every record
// maps or the call errors.
func (s *Service) GetStepTree(ctx context.Context, caseID int64, caseCode string) (*LoadedTree, error) {
	query := url.Values{}
	switch {
	case caseID != 0:
		query.Set("case_id", strconv.FormatInt(caseID, 10))
	case caseCode != "":
		query.Set("case_code", caseCode)
	default:
		return nil, ErrNoIdentifier
	}

	var env envelope
	endpoint := s.baseURL + "/autotest/step/tree?" + query.Encode()
	if err := httpclient.SendJSON(ctx, s.client, "GET", endpoint, nil, &env); err != nil {
		return nil, fmt.Errorf("load step tree: %w", err)
	}

	// The data list mixes step records with one trailing counter record;
	// split on the counter's marker field.
	var rawItems []json.RawMessage
	if err := json.Unmarshal(env.Data, &rawItems); err != nil {
		return nil, fmt.Errorf("load step tree: %w", err)
	}

	loaded := &LoadedTree{}
	records := make([]mstep.Step, 0, len(rawItems))
	for _, item := range rawItems {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(item, &probe); err != nil {
			return nil, fmt.Errorf("load step tree: %w", err)
		}
		if _, isCounter := probe["total_steps"]; isCounter {
			if err := json.Unmarshal(item, &loaded.Counter); err != nil {
				return nil, fmt.Errorf("load step tree: %w", err)
			}
			continue
		}
		// An empty case answers with a bare {case: ...} record; keep the
		// metadata, skip it as a step.
		if _, hasStep := probe["step_code"]; !hasStep {
			if raw, ok := probe["case"]; ok && loaded.Case == nil {
				var c mcase.Case
				if err := json.Unmarshal(raw, &c); err == nil {
					loaded.Case = &c
				}
			}
			continue
		}
		var rec mstep.Step
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, fmt.Errorf("load step tree: %w", err)
		}
		if loaded.Case == nil && rec.Case != nil {
			c := *rec.Case
			loaded.Case = &c
		}
		records = append(records, rec)
	}
	loaded.Roots = tstep.MapBackendSteps(records)
	return loaded, nil
}

// SaveStepTree validates nothing; callers run the steptree validation gate
// first. On success the returned detail list has already been merged back
// into the tree, so a follow-up save updates instead of re-creating.
func (s *Service) SaveStepTree(ctx context.Context, t *steptree.Tree, payload *tstep.SavePayload) (*mstep.SaveResult, error) {
	var env envelope
	endpoint := s.baseURL + "/autotest/step/update_or_create_tree"
	if err := httpclient.SendJSON(ctx, s.client, "POST", endpoint, payload, &env); err != nil {
		return nil, fmt.Errorf("save step tree: %w", err)
	}
	var result mstep.SaveResult
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &result); err != nil {
			return nil, fmt.Errorf("save step tree: %w", err)
		}
	}
	if len(result.SuccessDetail) > 0 {
		if err := t.ApplySaveDetail(result.SuccessDetail); err != nil {
			return nil, fmt.Errorf("save step tree: %w", err)
		}
	}
	return &result, nil
}

// ExecuteRequest is the execute_or_debugging body. Run mode sends only the
// case id; debug mode also sends the (unsaved) steps.
type ExecuteRequest struct {
	CaseID           int64           `json:"case_id"`
	EnvName          string          `json:"env_name,omitempty"`
	Steps            []mstep.Step    `json:"steps,omitempty"`
	InitialVariables []mvar.KeyValue `json:"initial_variables,omitempty"`
}

func (s *Service) Execute(ctx context.Context, req ExecuteRequest) (*mstep.ExecuteSummary, error) {
	var env envelope
	endpoint := s.baseURL + "/autotest/step/execute_or_debugging"
	if err := httpclient.SendJSON(ctx, s.client, "POST", endpoint, req, &env); err != nil {
		return nil, fmt.Errorf("execute case: %w", err)
	}
	var summary mstep.ExecuteSummary
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		return nil, fmt.Errorf("execute case: %w", err)
	}
	return &summary, nil
}

// QuotePreview loads the referenced script's steps for display under a quote
// node. The result is mapped through the same converter but is read-only:
// it never joins the owning tree's traversal or save payload.
func (s *Service) QuotePreview(ctx context.Context, quoteCaseID int64) ([]*steptree.StepNode, error) {
	loaded, err := s.GetStepTree(ctx, quoteCaseID, "")
	if err != nil {
		return nil, fmt.Errorf("quote preview: %w", err)
	}
	return loaded.Roots, nil
}
