package openapi

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Component schema names used in Document.
const (
	ComponentValues = "FormValues"
	ComponentState  = "WorkflowState"
	ComponentError  = "Error"
	ComponentField  = "FieldUpdate"
)

// Route templates shared with the HTTP adapter.
const (
	SessionsPath = "/sessions"
	SessionPath  = "/sessions/{session}"
)

// Option configures Document.
type Option func(*config)

type config struct {
	version string
	servers []string
}

// WithVersion sets info.version. Defaults to "1.0.0".
func WithVersion(v string) Option {
	return func(c *config) {
		if v != "" {
			c.version = v
		}
	}
}

// WithServer adds a server URL.
func WithServer(url string) Option {
	return func(c *config) {
		if url != "" {
			c.servers = append(c.servers, url)
		}
	}
}

// Document describes the HTTP API that serves one workflow of model.
func Document(model *schema.Model, options ...Option) *openapi3.T {
	cfg := &config{version: "1.0.0"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	title := model.Title()
	if title == "" {
		title = "Form"
	}
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       title + " workflow",
			Description: model.Description(),
			Version:     cfg.version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				ComponentValues: PayloadSchema(model).NewRef(),
				ComponentState:  stateSchema().NewRef(),
				ComponentError:  errorSchema().NewRef(),
				ComponentField:  fieldUpdateSchema().NewRef(),
			},
		},
	}
	for _, url := range cfg.servers {
		doc.AddServer(&openapi3.Server{URL: url})
	}

	stateRef := componentRef(ComponentState)
	errorRef := componentRef(ComponentError)

	schemaOp := operation("getSchema", "Form schema")
	schemaOp.AddResponse(http.StatusOK, openapi3.NewResponse().
		WithDescription("The declarative form schema").
		WithJSONSchema(openapi3.NewObjectSchema()))
	doc.AddOperation("/schema", http.MethodGet, schemaOp)

	createOp := operation("createSession", "Start a workflow")
	createOp.AddResponse(http.StatusCreated, jsonResponse("Initial state", stateRef))
	doc.AddOperation(SessionsPath, http.MethodPost, createOp)

	deleteOp := sessionOperation("deleteSession", "Abandon a workflow")
	deleteOp.AddResponse(http.StatusNoContent, openapi3.NewResponse().WithDescription("Session removed"))
	deleteOp.AddResponse(http.StatusNotFound, jsonResponse("Unknown session", errorRef))
	doc.AddOperation(SessionPath, http.MethodDelete, deleteOp)

	stateOp := sessionOperation("getState", "Current workflow state")
	stateOp.AddResponse(http.StatusOK, jsonResponse("Current state", stateRef))
	stateOp.AddResponse(http.StatusNotFound, jsonResponse("Unknown session", errorRef))
	doc.AddOperation(SessionPath+"/state", http.MethodGet, stateOp)

	setField := sessionOperation("setField", "Set one field value")
	setField.AddParameter(openapi3.NewPathParameter("name").
		WithDescription("Field name").
		WithSchema(openapi3.NewStringSchema()))
	setField.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(componentRef(ComponentField)),
	}
	setField.AddResponse(http.StatusOK, jsonResponse("Updated state", stateRef))
	setField.AddResponse(http.StatusBadRequest, jsonResponse("Unknown field or wrong value type", errorRef))
	setField.AddResponse(http.StatusNotFound, jsonResponse("Unknown session", errorRef))
	setField.AddResponse(http.StatusConflict, jsonResponse("Values are frozen in this phase", errorRef))
	doc.AddOperation(SessionPath+"/fields/{name}", http.MethodPut, setField)

	for _, t := range []struct {
		path, id, summary string
		validates         bool
		submits           bool
	}{
		{"/next", "next", "Validate the current step and advance", true, false},
		{"/previous", "previous", "Go back one step", false, false},
		{"/submit", "submit", "Validate the last step and open the review", true, false},
		{"/confirm", "confirm", "Submit the reviewed values", false, true},
		{"/cancel", "cancel", "Leave the review and keep editing", false, false},
	} {
		op := sessionOperation(t.id, t.summary)
		op.AddResponse(http.StatusOK, jsonResponse("New state", stateRef))
		op.AddResponse(http.StatusNotFound, jsonResponse("Unknown session", errorRef))
		op.AddResponse(http.StatusConflict, jsonResponse("Transition not allowed", errorRef))
		if t.validates {
			op.AddResponse(http.StatusUnprocessableEntity, jsonResponse("Step has invalid fields", errorRef))
		}
		if t.submits {
			op.AddResponse(http.StatusBadGateway, jsonResponse("Submitter failed", errorRef))
		}
		doc.AddOperation(SessionPath+t.path, http.MethodPost, op)
	}

	reviewOp := sessionOperation("getReview", "Review summary")
	reviewOp.AddResponse(http.StatusOK, openapi3.NewResponse().
		WithDescription("HTML review of visible fields").
		WithContent(openapi3.NewContentWithSchema(openapi3.NewStringSchema(), []string{"text/html"})))
	reviewOp.AddResponse(http.StatusNotFound, jsonResponse("Unknown session", errorRef))
	doc.AddOperation(SessionPath+"/review", http.MethodGet, reviewOp)

	return doc
}

// MarshalJSON encodes doc.
func MarshalJSON(doc *openapi3.T) ([]byte, error) {
	return doc.MarshalJSON()
}

func operation(id, summary string) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	return op
}

func sessionOperation(id, summary string) *openapi3.Operation {
	op := operation(id, summary)
	op.AddParameter(openapi3.NewPathParameter("session").
		WithDescription("Session id returned by createSession").
		WithSchema(openapi3.NewStringSchema()))
	return op
}

func componentRef(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

func jsonResponse(description string, ref *openapi3.SchemaRef) *openapi3.Response {
	return openapi3.NewResponse().WithDescription(description).WithJSONSchemaRef(ref)
}

func stateSchema() *openapi3.Schema {
	phase := openapi3.NewStringSchema().WithEnum("editing", "review_pending", "submitted")
	errs := openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewStringSchema())
	return openapi3.NewObjectSchema().
		WithProperty("stepIndex", openapi3.NewIntegerSchema().WithMin(0)).
		WithProperty("phase", phase).
		WithPropertyRef("values", componentRef(ComponentValues)).
		WithProperty("errors", errs).
		WithRequired([]string{"stepIndex", "phase", "values", "errors"})
}

func errorSchema() *openapi3.Schema {
	errs := openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewStringSchema())
	return openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("code", openapi3.NewStringSchema()).
		WithProperty("errors", errs).
		WithRequired([]string{"error", "code"})
}

func fieldUpdateSchema() *openapi3.Schema {
	value := openapi3.NewOneOfSchema(openapi3.NewStringSchema(), openapi3.NewBoolSchema())
	return openapi3.NewObjectSchema().
		WithProperty("value", value).
		WithRequired([]string{"value"})
}
