// Package httpapi exposes form workflows over HTTP with chi.
//
// POST /sessions starts a workflow and returns its id. Every other workflow
// route lives under /sessions/{session} and answers with the session state,
// the current step and the step indicator. The routes match the document
// produced by the openapi package, which is itself served at /openapi.json.
package httpapi
