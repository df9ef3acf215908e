// Package docs registers the OpenAPI document served at /docs/doc.json.
//
// The document is maintained alongside the swag annotations on the handlers
// in internal/api/handler; regenerate with `swag init -g cmd/api/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Pitchside"
        },
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Health check",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health/db": {
            "get": {
                "tags": ["health"],
                "summary": "Database health check",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/health/cache": {
            "get": {
                "tags": ["health"],
                "summary": "Cache health check",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/epl/standings": {
            "get": {
                "tags": ["epl"],
                "summary": "EPL standings",
                "produces": ["application/json"],
                "responses": {"200": {"description": "Always an empty list"}}
            }
        },
        "/api/epl/fixtures": {
            "get": {
                "tags": ["epl"],
                "summary": "EPL fixtures",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "status", "in": "query", "enum": ["upcoming", "scheduled", "live", "inplay", "finished", "ft"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.FixturesResponse"}},
                    "500": {"description": "Upstream failure", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/api/epl/players": {
            "get": {
                "tags": ["epl"],
                "summary": "EPL players",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "string", "name": "position", "in": "query", "enum": ["GK", "DEF", "MID", "FWD"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.PlayerPage"}},
                    "500": {"description": "Upstream failure", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/api/epl/players/{id}/summary": {
            "get": {
                "tags": ["epl"],
                "summary": "EPL player summary",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "304": {"description": "Not Modified"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/epl/injuries": {
            "get": {
                "tags": ["epl"],
                "summary": "EPL injuries",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/epl/live-games": {
            "get": {
                "tags": ["epl"],
                "summary": "EPL live games",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "500": {"description": "Upstream failure"}}
            }
        },
        "/api/epl/live-games/ws": {
            "get": {
                "tags": ["epl"],
                "summary": "Live games push feed (WebSocket)",
                "responses": {"101": {"description": "Switching Protocols"}, "503": {"description": "Live feed disabled"}}
            }
        },
        "/api/epl/sync": {
            "post": {
                "tags": ["epl"],
                "summary": "Warm FPL caches",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"},
                    "403": {"description": "Admin access required"},
                    "500": {"description": "Failed to sync data"}
                }
            }
        },
        "/api/sorare/player": {
            "get": {
                "tags": ["sorare"],
                "summary": "Sorare player lookup",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "firstName", "in": "query", "required": true},
                    {"type": "string", "name": "lastName", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "Player or null"}, "400": {"description": "firstName and lastName required"}}
            }
        },
        "/api/user/cards": {
            "get": {
                "tags": ["cards"],
                "summary": "Owned cards",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "503": {"description": "Database not configured"}}
            }
        },
        "/api/players/{id}": {
            "get": {
                "tags": ["cards"],
                "summary": "Player details",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Player not found"}}
            }
        },
        "/api/auth/user": {
            "get": {
                "tags": ["auth"],
                "summary": "Current user",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        }
    },
    "definitions": {
        "respond.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "code": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "handler.FixturesResponse": {
            "type": "object",
            "properties": {
                "response": {"type": "array", "items": {"type": "object"}}
            }
        },
        "handler.PlayerPage": {
            "type": "object",
            "properties": {
                "response": {"type": "array", "items": {"type": "object"}},
                "results": {"type": "integer"},
                "paging": {
                    "type": "object",
                    "properties": {"current": {"type": "integer"}, "total": {"type": "integer"}}
                },
                "total": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:5000",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Pitchside API",
	Description:      "Fantasy football card platform: FPL fixtures, players and live games, Sorare lookups, and owned player cards.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
