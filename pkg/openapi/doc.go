// Package openapi describes a form as OpenAPI 3 documents: the JSON payload a
// submitter receives and the HTTP API that drives a workflow.
package openapi
