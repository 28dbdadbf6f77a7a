// Package docs registers the OpenAPI description of the ppm portal API with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/negotiate": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["upload"],
                "summary": "Negotiate and analyze selected files",
                "parameters": [
                    {"type": "file", "description": "Selected files (PDF, JPG, or PNG)", "name": "files", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "Negotiation outcome", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "No files or unsupported type", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "409": {"description": "Analysis already running", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "502": {"description": "Analysis service rejected the request", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/controls": {
            "get": {
                "produces": ["application/json"],
                "tags": ["upload"],
                "summary": "Upload button state",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}}}
            }
        },
        "/selection/clear": {
            "post": {
                "produces": ["application/json"],
                "tags": ["upload"],
                "summary": "Clear the current selection",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}}}
            }
        },
        "/viewer": {
            "get": {
                "produces": ["application/json"],
                "tags": ["viewer"],
                "summary": "Current viewer state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/share": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["viewer"],
                "summary": "Email the current report",
                "parameters": [
                    {"description": "Recipient", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ShareRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Invalid email", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "404": {"description": "No analysis loaded", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/public": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["viewer"],
                "summary": "Select a public sample analysis",
                "parameters": [
                    {"description": "Location of the public analysis", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SelectPublicRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Location is not a relative path", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/folders/{state}/{city}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["folders"],
                "summary": "List folders of a location",
                "parameters": [
                    {"type": "string", "description": "State", "name": "state", "in": "path", "required": true},
                    {"type": "string", "description": "City", "name": "city", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/folders/open": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["folders"],
                "summary": "Open a folder in the viewer",
                "parameters": [
                    {"description": "Folder route", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.OpenFolderRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        }
    },
    "definitions": {
        "handler.APIError": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "handler.Response": {
            "type": "object",
            "properties": {"success": {"type": "boolean", "example": true}, "data": {}}
        },
        "handler.ErrorResponseBody": {
            "type": "object",
            "properties": {"success": {"type": "boolean", "example": false}, "error": {"$ref": "#/definitions/handler.APIError"}}
        },
        "handler.ShareRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {"email": {"type": "string", "example": "ana@example.com"}}
        },
        "handler.SelectPublicRequest": {
            "type": "object",
            "required": ["location"],
            "properties": {"location": {"type": "string", "example": "data/jalisco_analisis.json"}}
        },
        "handler.OpenFolderRequest": {
            "type": "object",
            "required": ["route"],
            "properties": {"route": {"type": "string", "example": "public/Jalisco/Guadalajara/obra-7"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "PPM Portal API",
	Description:      "Contract price analysis portal: cache negotiation, analysis viewer and report sharing.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
