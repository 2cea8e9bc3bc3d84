package httputil

import (
	"encoding/json"
	"net/http"
)

// Envelope is the wire format shared by all API responses
type Envelope struct {
	OK   bool        `json:"ok"`
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a successful envelope with HTTP 200
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, Envelope{
		OK:   true,
		Code: 0,
		Msg:  "success",
		Data: data,
	})
}

// WriteFail writes a failed envelope. Business failures keep HTTP 200;
// clients branch on the envelope, not the status line.
func WriteFail(w http.ResponseWriter, code int, msg string) error {
	return WriteFailStatus(w, http.StatusOK, code, msg)
}

// WriteFailStatus writes a failed envelope with an explicit HTTP status
func WriteFailStatus(w http.ResponseWriter, status, code int, msg string) error {
	return WriteJSON(w, status, Envelope{
		OK:   false,
		Code: code,
		Msg:  msg,
	})
}

// WriteInternalError writes a failed envelope with HTTP 500
func WriteInternalError(w http.ResponseWriter, code int, err error) {
	WriteFailStatus(w, http.StatusInternalServerError, code, err.Error())
}
