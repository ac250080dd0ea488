// Package docs registers the OpenAPI description served under /swagger.
// Regenerate the full document from handler annotations with `swag init -g cmd/api/main.go`.
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
        "/pipeline/board": {"get": {"tags": ["Pipeline"], "summary": "Pipeline board", "responses": {"200": {"description": "OK"}}}},
        "/pipeline/drop": {"post": {"tags": ["Pipeline"], "summary": "Apply a drag-and-drop gesture", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}},
        "/stages": {
            "get": {"tags": ["Stages"], "summary": "List stages", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Stages"], "summary": "Create stage", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/stages/order": {"put": {"tags": ["Stages"], "summary": "Reorder stages", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}},
        "/stages/{id}": {
            "put": {"tags": ["Stages"], "summary": "Update stage", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["Stages"], "summary": "Delete stage", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}
        },
        "/deals": {
            "get": {"tags": ["Deals"], "summary": "List deals", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Deals"], "summary": "Create deal", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/deals/{id}": {
            "get": {"tags": ["Deals"], "summary": "Get deal", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["Deals"], "summary": "Update deal", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["Deals"], "summary": "Delete deal", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}}}
        },
        "/deals/{id}/move": {"post": {"tags": ["Deals"], "summary": "Move deal to stage", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}},
        "/deals/{id}/history": {"get": {"tags": ["Deals"], "summary": "Deal stage history", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/deals/{id}/quotes": {"get": {"tags": ["Finance"], "summary": "Quotes of a deal", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/contacts": {
            "get": {"tags": ["Contacts"], "summary": "List contacts", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Contacts"], "summary": "Create contact", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/contacts/{id}": {
            "get": {"tags": ["Contacts"], "summary": "Get contact", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["Contacts"], "summary": "Update contact", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["Contacts"], "summary": "Delete contact", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}}}
        },
        "/contacts/{id}/timeline": {"get": {"tags": ["Contacts"], "summary": "Contact timeline", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/contacts/{id}/quotes": {"get": {"tags": ["Finance"], "summary": "Quotes of a contact", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/contacts/{id}/transactions": {"get": {"tags": ["Finance"], "summary": "Receivables and payables of a contact", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/quotes": {"post": {"tags": ["Finance"], "summary": "Create quote", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}},
        "/transactions": {"post": {"tags": ["Finance"], "summary": "Create transaction", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}},
        "/transactions/{id}/receive": {"post": {"tags": ["Finance"], "summary": "Mark receivable as received", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}},
        "/address/zip/{zip}": {"get": {"tags": ["Address"], "summary": "Address by postal code", "parameters": [{"type": "string", "name": "zip", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "503": {"description": "Service Unavailable"}}}},
        "/address/search": {"get": {"tags": ["Address"], "summary": "Search postal codes by street", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "503": {"description": "Service Unavailable"}}}}
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "x-api-key", "in": "header"},
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}]
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Gestor API",
	Description:      "Sales pipeline, contacts and receivables for small businesses.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
