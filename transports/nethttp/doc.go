// Package nethttp connects net/http handlers to the reqlog interceptors.
//
// Endpoint serves handlers that return a value or an error; the value is
// encoded as JSON after the response entry is logged and errors are rendered
// as {"statusCode", "message"} with the error's status code or 500.
//
//	mw := nethttp.New(logging)
//	mux.Handle("GET /orders/{id}", mw.Endpoint(func(r *http.Request, reply *nethttp.Reply) (any, error) {
//		return store.Order(r.Context(), r.PathValue("id"))
//	}))
//
// Wrap serves plain http.Handlers; the captured response body is logged as
// the result and a panic is logged as the failure before being re-raised.
package nethttp
