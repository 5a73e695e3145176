// Package api is the HTTP client for the gym back-office backend.
//
// It covers the calls the console core makes itself: login, the current user's profile,
// and the current gym. Every failure is classified as a [*NetworkError] (no response),
// a [*ProtocolError] (non-2xx response) or one of the response-shape sentinels, and
// [UserMessage] turns any of them into text fit for an operator.
package api
