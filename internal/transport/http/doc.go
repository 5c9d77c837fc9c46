// Package http exposes the pipeline over HTTP: the analyze endpoint that
// drives a full run, the privacy confirm/cancel pair, export endpoints for
// spreadsheet, document and CSV output, session views and state
// import/export, plus health, metrics and the websocket progress stream.
//
// Every error crossing the wire is rendered as the v1.ErrorResponse
// envelope with the HTTP status derived from the error code.
package http
