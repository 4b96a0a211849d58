// Package docs registers the OpenAPI document served at /docs.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Hoopscore"
        },
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/mvp": {
            "get": {
                "description": "Returns eligible players for a season ordered by composite score, with the actual MVP flagged.",
                "produces": ["application/json"],
                "tags": ["mvp"],
                "summary": "Get MVP ladder",
                "parameters": [
                    {"type": "string", "description": "Season (2022, 2021-22 or 2021-2022)", "name": "season", "in": "query", "required": true},
                    {"type": "number", "description": "Minimum points per game, exclusive (default 15)", "name": "minPoints", "in": "query"},
                    {"type": "number", "description": "Minimum effective FG percentage, exclusive (default 40)", "name": "minEffectiveFg", "in": "query"},
                    {"type": "integer", "description": "Minimum games started, exclusive (default 50)", "name": "minGamesStarted", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/assemble.ScoredPlayer"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/api/v1/mvp/batch": {
            "get": {
                "description": "Evaluates every season in [from, to]. Seasons that fail are listed in errors without failing the request.",
                "produces": ["application/json"],
                "tags": ["mvp"],
                "summary": "Get MVP ladders for a season range",
                "parameters": [
                    {"type": "string", "description": "First season", "name": "from", "in": "query", "required": true},
                    {"type": "string", "description": "Last season", "name": "to", "in": "query", "required": true},
                    {"type": "number", "description": "Minimum points per game, exclusive (default 15)", "name": "minPoints", "in": "query"},
                    {"type": "number", "description": "Minimum effective FG percentage, exclusive (default 40)", "name": "minEffectiveFg", "in": "query"},
                    {"type": "integer", "description": "Minimum games started, exclusive (default 50)", "name": "minGamesStarted", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/api/v1/standings": {
            "get": {
                "description": "Returns the season's teams ordered by wins with standing and rank assigned.",
                "produces": ["application/json"],
                "tags": ["standings"],
                "summary": "Get team standings",
                "parameters": [
                    {"type": "string", "description": "Season", "name": "season", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/provider.TeamRecord"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/api/v1/leaders": {
            "get": {
                "description": "Returns the top players by points per game computed from per-player game logs.",
                "produces": ["application/json"],
                "tags": ["leaders"],
                "summary": "Get scoring leaders",
                "parameters": [
                    {"type": "string", "description": "Season", "name": "season", "in": "query", "required": true},
                    {"type": "integer", "description": "Number of players (default 10, max 50)", "name": "top", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/provider.GameLogSummary"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Returns basic health status and timestamp.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/health/cache": {
            "get": {
                "description": "Returns response cache statistics and Cache Store backend status.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Cache health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object"}}
                }
            }
        }
    },
    "definitions": {
        "assemble.ScoredPlayer": {
            "type": "object",
            "properties": {
                "player": {"type": "string"},
                "team": {"type": "string"},
                "season": {"type": "integer"},
                "score": {"type": "number"},
                "relativeScore": {"type": "number"},
                "isMVP": {"type": "boolean"}
            }
        },
        "provider.TeamRecord": {
            "type": "object",
            "properties": {
                "season": {"type": "integer"},
                "abbreviation": {"type": "string"},
                "name": {"type": "string"},
                "wins": {"type": "integer"},
                "losses": {"type": "integer"},
                "win_pct": {"type": "number"},
                "standing": {"type": "integer"},
                "rank": {"type": "integer"}
            }
        },
        "provider.GameLogSummary": {
            "type": "object",
            "properties": {
                "season": {"type": "integer"},
                "player_id": {"type": "integer"},
                "player": {"type": "string"},
                "team": {"type": "string"},
                "games": {"type": "integer"},
                "ppg": {"type": "number"}
            }
        },
        "respond.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "detail": {"type": "string"},
                        "season": {"type": "string"}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:5001",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Hoopscore MVP Ladder API",
	Description:      "Ranks an NBA season's players by MVP suitability from team standings, per-game production and shooting efficiency.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
