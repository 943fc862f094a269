// Package docs holds the swagger description served under /swagger.
// Regenerate with: swag init -g cmd/ledger_backend/main.go -o cmd/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/accounts": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "List accounts with balances", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "Create a new account", "responses": {"201": {"description": "Created"}}}
        },
        "/accounts/{accountID}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "Get an account by ID", "parameters": [{"type": "string", "name": "accountID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "Update account details", "parameters": [{"type": "string", "name": "accountID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "Delete an account", "parameters": [{"type": "string", "name": "accountID", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/categories": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "List categories", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "Create a category", "responses": {"201": {"description": "Created"}}}
        },
        "/categories/{categoryID}": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "Delete a category", "parameters": [{"type": "string", "name": "categoryID", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/events": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["events"], "summary": "List events", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["events"], "summary": "Record an event", "parameters": [{"type": "string", "name": "Idempotency-Key", "in": "header"}], "responses": {"200": {"description": "Replay"}, "201": {"description": "Created"}}}
        },
        "/events/{eventID}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["events"], "summary": "Get an event by ID", "parameters": [{"type": "string", "name": "eventID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["events"], "summary": "Amend an event", "parameters": [{"type": "string", "name": "eventID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["events"], "summary": "Remove an event", "parameters": [{"type": "string", "name": "eventID", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/ledger/audit": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["ledger"], "summary": "Audit account balances", "responses": {"200": {"description": "OK"}, "409": {"description": "Drift"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Money Tracker Ledger API",
	Description:      "Ledger engine keeping account balances consistent with income, expense and transfer events.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
