// Package formflow is the top-level entry point: load a schema, start a
// workflow and hand it to a presentation adapter.
package formflow

import (
	"context"
	"strings"

	"github.com/goliatone/go-formflow/internal/loader"
	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/transport/httpapi"
	"github.com/goliatone/go-formflow/pkg/workflow"
)

// Model aliases schema.Model for callers that only import the root package.
type Model = schema.Model

// FormValues aliases schema.FormValues.
type FormValues = schema.FormValues

// State aliases workflow.State.
type State = workflow.State

// NewLoader constructs a schema loader using the internal implementation while
// keeping the concrete type hidden from consumers.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	return loader.New(schema.NewLoaderOptions(options...))
}

// SourceFromLocation picks a URL source for http(s) locations and a file
// source for everything else. Malformed URLs return schema.ErrInvalidSource.
func SourceFromLocation(location string) (schema.Source, error) {
	lower := strings.ToLower(strings.TrimSpace(location))
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return schema.ParseURLSource(location)
	}
	return schema.SourceFromFile(location), nil
}

// LoadModel reads, parses and checks the schema at src.
func LoadModel(ctx context.Context, src schema.Source, options ...schema.LoaderOption) (*schema.Model, error) {
	return loader.New(schema.NewLoaderOptions(options...)).LoadModel(ctx, src)
}

// NewWorkflow starts a workflow for model.
func NewWorkflow(model *schema.Model, options ...workflow.Option) (*workflow.Controller, error) {
	return workflow.New(model, options...)
}

// NewHTTPHandler serves sessions of model over HTTP.
func NewHTTPHandler(model *schema.Model, options ...httpapi.Option) (*httpapi.Handler, error) {
	return httpapi.New(model, options...)
}

// RunTerminal starts a workflow for model and drives it with a terminal
// session until it is submitted or the user quits.
func RunTerminal(ctx context.Context, model *schema.Model, workflowOptions []workflow.Option, sessionOptions ...tui.Option) (*tui.Session, workflow.State, error) {
	ctrl, err := workflow.New(model, workflowOptions...)
	if err != nil {
		return nil, workflow.State{}, err
	}
	session, err := tui.NewSession(ctrl, sessionOptions...)
	if err != nil {
		return nil, workflow.State{}, err
	}
	state, err := session.Run(ctx)
	return session, state, err
}
