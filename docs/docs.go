// Package docs registers the OpenAPI description served at /swagger-ui/.
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
        "/api/auth/signup": {
            "post": {
                "tags": ["auth"],
                "summary": "Local signup",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.SignupRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.TokenResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.APIResponse"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Local login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.LoginResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/types.LoginResponse"}}
                }
            }
        },
        "/api/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Describe the bearer",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.MeResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/types.APIResponse"}}
                }
            }
        },
        "/api/onboarding/save": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["account"],
                "summary": "Save onboarding profile",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.OnboardingRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TokenResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.APIResponse"}}
                }
            }
        },
        "/api/mypage/withdraw": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["account"],
                "summary": "Withdraw the signed-in account",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.APIResponse"}}
                }
            }
        },
        "/api/chat/send": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["chat"],
                "summary": "Send a room message",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.ChatSendRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.APIResponse"}}}
            }
        },
        "/api/chat/history/{sessionId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["chat"],
                "summary": "Recent messages of a room, oldest first",
                "description": "Returns a bare JSON array, not the response envelope.",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "room id", "name": "sessionId", "in": "path", "required": true},
                    {"type": "integer", "description": "max messages", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/services.ChatMessage"}}}}
            }
        },
        "/api/ads": {
            "get": {
                "tags": ["public"],
                "summary": "Landing page ads",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.APIResponse"}}}
            }
        }
    },
    "definitions": {
        "types.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "types.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/types.APIError"},
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "types.SignupRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "types.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "types.OnboardingRequest": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "careerLevel": {"type": "string"},
                "displayName": {"type": "string"},
                "dob": {"type": "string"},
                "education": {"type": "string"},
                "gender": {"type": "string"},
                "nickname": {"type": "string"},
                "phone": {"type": "string"},
                "position": {"type": "string"},
                "region": {"type": "string"}
            }
        },
        "types.ChatSendRequest": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "nickname": {"type": "string"},
                "role": {"type": "string"},
                "roomId": {"type": "string"},
                "sessionId": {"type": "string"},
                "text": {"type": "string"},
                "type": {"type": "string"},
                "userId": {"type": "integer"}
            }
        },
        "services.ChatMessage": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "createAt": {"type": "string"},
                "email": {"type": "string"},
                "id": {"type": "integer"},
                "nickname": {"type": "string"},
                "role": {"type": "string"},
                "sessionId": {"type": "string"},
                "userId": {"type": "integer"}
            }
        },
        "types.TokenResponse": {
            "type": "object",
            "properties": {
                "accessToken": {"type": "string"},
                "message": {"type": "string"},
                "requiresOnboarding": {"type": "boolean"},
                "role": {"type": "string"},
                "tokenType": {"type": "string"}
            }
        },
        "types.LoginResponse": {
            "type": "object",
            "properties": {
                "accessToken": {"type": "string"},
                "email": {"type": "string"},
                "message": {"type": "string"},
                "requiresOnboarding": {"type": "boolean"},
                "role": {"type": "string"},
                "success": {"type": "boolean"},
                "tokenType": {"type": "string"},
                "userId": {"type": "integer"}
            }
        },
        "types.MeResponse": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "role": {"type": "string"}
            }
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
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "hirehub API",
	Description:      "Job portal identity and live-support chat",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
