package api

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
        "/decode": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Split the body at the first byte at or above the header threshold and XOR the content",
                "consumes": ["application/octet-stream"],
                "produces": ["text/plain"],
                "tags": ["codec"],
                "summary": "Decode a NAV file",
                "parameters": [
                    {"type": "string", "description": "XOR key, decimal or 0x hex", "name": "key", "in": "query"},
                    {"type": "integer", "description": "Progress steps", "name": "steps", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/encode": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Keep leading short lines as header and XOR everything from the first long line on",
                "consumes": ["text/plain"],
                "produces": ["application/octet-stream"],
                "tags": ["codec"],
                "summary": "Encode text into a NAV file",
                "parameters": [
                    {"type": "string", "description": "XOR key, decimal or 0x hex", "name": "key", "in": "query"},
                    {"type": "integer", "description": "Progress steps", "name": "steps", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string", "format": "byte"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Get the health status of the API",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/runs": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "List journal runs, newest first",
                "produces": ["application/json"],
                "tags": ["journal"],
                "summary": "List runs",
                "parameters": [
                    {"type": "integer", "default": 20, "description": "Maximum number of runs", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.RunsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "api.RunsResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "runs": {"type": "array", "items": {"$ref": "#/definitions/journal.Run"}}
            }
        },
        "journal.Run": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "operation": {"type": "string"},
                "input": {"type": "string"},
                "output": {"type": "string"},
                "header_bytes": {"type": "integer"},
                "content_bytes": {"type": "integer"},
                "status": {"type": "string"},
                "error": {"type": "string"},
                "started_at": {"type": "string"},
                "duration": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "X-API-Key",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8085",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "navcodec REST API",
	Description:      "Decode and encode NAV files over HTTP.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
