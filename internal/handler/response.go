// Package handler provides the HTTP API of Storefront.
package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// TotalCountHeader carries the number of rows matching a list request.
const TotalCountHeader = "X-Total-Count"

// Response is the envelope of every successful JSON response except the token endpoint.
type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Response{Message: message, Data: data})
}

func writeList(w http.ResponseWriter, message string, total int64, data any) {
	w.Header().Set(TotalCountHeader, strconv.FormatInt(total, 10))
	writeData(w, http.StatusOK, message, data)
}

// =============================================================================
// Messages
// =============================================================================

func detailsMessage(entity string, id int64) string {
	return fmt.Sprintf("Details for %s with id %d", entity, id)
}

func createdMessage(entity string, id int64) string {
	return fmt.Sprintf("%s with id %d was created successfully", entity, id)
}

func updatedMessage(entity string, id int64) string {
	return fmt.Sprintf("%s with id %d was updated successfully", entity, id)
}

func deletedMessage(entity string, id int64) string {
	return fmt.Sprintf("%s with id %d was deleted successfully", entity, id)
}

func uploadMessage(entity string, id int64) string {
	return fmt.Sprintf("Upload URL for %s with id %d", entity, id)
}

func pageMessage(page, limit int, entities string) string {
	return fmt.Sprintf("page %d with %d %s", page, limit, entities)
}

func cartPageMessage(count, page, limit int) string {
	return fmt.Sprintf("Retrieved %d carts for page %d with limit %d.", count, page, limit)
}
