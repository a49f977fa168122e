// Package accounts registers the OpenAPI document for the accounts service
// with swag. It follows the layout swag init emits; keep it in step with the
// annotations in internal/accounts/http and the accountsdk types.
package accounts

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team",
            "url": "https://github.com/aussiebroadwan/accounts"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health/live": {
            "get": {
                "description": "Always returns 200 OK while the process is running.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Health"
                ],
                "summary": "Liveness probe",
                "responses": {
                    "200": {
                        "description": "status, service, version, uptime",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.HealthResponse"
                        }
                    }
                }
            }
        },
        "/health/ready": {
            "get": {
                "description": "Returns 200 when the account store is reachable, 503 otherwise.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Health"
                ],
                "summary": "Readiness probe",
                "responses": {
                    "200": {
                        "description": "status, service, version, checks",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.HealthResponse"
                        }
                    },
                    "503": {
                        "description": "status, service, version, checks - service not ready",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.HealthResponse"
                        }
                    }
                }
            }
        },
        "/v1/auth/token": {
            "post": {
                "description": "Authenticate with email and password to receive a JWT access token.\nUnknown email, wrong password and deactivated accounts all fail with INVALID_CREDENTIALS.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Auth"
                ],
                "summary": "Obtain access token",
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/accountsdk.LoginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.TokenResponse"
                        }
                    },
                    "401": {
                        "description": "INVALID_CREDENTIALS",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "VALIDATION_ERROR",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.ErrorResponse"
                        }
                    },
                    "429": {
                        "description": "RATE_LIMITED",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "INTERNAL_ERROR",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/v1/users": {
            "get": {
                "description": "Returns a page of accounts, newest first. page_size is capped at 100.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Users"
                ],
                "summary": "List users",
                "parameters": [
                    {
                        "type": "integer",
                        "default": 1,
                        "description": "Page number (1-based)",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "default": 20,
                        "description": "Page size",
                        "name": "page_size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.PaginatedAccountsResponse"
                        }
                    },
                    "422": {
                        "description": "VALIDATION_ERROR",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "INTERNAL_ERROR",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/v1/users/register": {
            "post": {
                "description": "Creates a new account. Email must be unique, including among deactivated accounts.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Users"
                ],
                "summary": "Register a new user",
                "parameters": [
                    {
                        "description": "Registration details",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/accountsdk.RegisterRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.AccountResponse"
                        }
                    },
                    "409": {
                        "description": "DUPLICATE_EMAIL",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "VALIDATION_ERROR",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.ErrorResponse"
                        }
                    },
                    "429": {
                        "description": "RATE_LIMITED",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "INTERNAL_ERROR",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/v1/users/{id}": {
            "get": {
                "description": "Returns a single account by UUID, active or not.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Users"
                ],
                "summary": "Get user by ID",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID (UUID)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.AccountResponse"
                        }
                    },
                    "404": {
                        "description": "USER_NOT_FOUND",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "VALIDATION_ERROR",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "INTERNAL_ERROR",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.ErrorResponse"
                        }
                    }
                }
            },
            "delete": {
                "description": "Soft-deletes the account by marking it inactive. Repeating the call succeeds.",
                "tags": [
                    "Users"
                ],
                "summary": "Deactivate user",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID (UUID)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Account deactivated"
                    },
                    "404": {
                        "description": "USER_NOT_FOUND",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "VALIDATION_ERROR",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "INTERNAL_ERROR",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.ErrorResponse"
                        }
                    }
                }
            },
            "patch": {
                "description": "Partially updates the profile. Omitted fields are left unchanged.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Users"
                ],
                "summary": "Update user profile",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID (UUID)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Fields to change",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/accountsdk.UpdateAccountRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.AccountResponse"
                        }
                    },
                    "404": {
                        "description": "USER_NOT_FOUND",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "VALIDATION_ERROR",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "INTERNAL_ERROR",
                        "schema": {
                            "$ref": "#/definitions/accountsdk.ErrorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "accountsdk.AccountResponse": {
            "type": "object",
            "properties": {
                "created_at": {
                    "type": "string"
                },
                "email": {
                    "type": "string",
                    "example": "jane@example.com"
                },
                "full_name": {
                    "type": "string",
                    "example": "Jane Doe"
                },
                "id": {
                    "type": "string",
                    "example": "6f1c0e2a-8f0d-4a53-9f7e-3c1a2b4d5e6f"
                },
                "is_active": {
                    "type": "boolean"
                },
                "is_verified": {
                    "type": "boolean"
                },
                "phone": {
                    "type": "string"
                },
                "role": {
                    "type": "string",
                    "example": "customer"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "accountsdk.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string",
                    "example": "USER_NOT_FOUND"
                },
                "fields": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "accountsdk.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "$ref": "#/definitions/accountsdk.ErrorDetail"
                }
            }
        },
        "accountsdk.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {
                    "type": "string"
                }
            }
        },
        "accountsdk.HealthResponse": {
            "type": "object",
            "properties": {
                "checks": {
                    "description": "Checks is only set by the readiness probe.",
                    "allOf": [
                        {
                            "$ref": "#/definitions/accountsdk.HealthChecks"
                        }
                    ]
                },
                "service": {
                    "type": "string",
                    "example": "user-service"
                },
                "status": {
                    "type": "string",
                    "example": "ok"
                },
                "uptime": {
                    "type": "string",
                    "description": "Uptime is the process uptime (e.g. \"1h23m45s\")."
                },
                "version": {
                    "type": "string",
                    "example": "1.0.0"
                }
            }
        },
        "accountsdk.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string",
                    "example": "jane@example.com"
                },
                "password": {
                    "type": "string",
                    "example": "s3cur3P@ssw0rd"
                }
            }
        },
        "accountsdk.PaginatedAccountsResponse": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/accountsdk.AccountResponse"
                    }
                },
                "meta": {
                    "$ref": "#/definitions/accountsdk.ResponseMeta"
                },
                "pagination": {
                    "$ref": "#/definitions/accountsdk.Pagination"
                }
            }
        },
        "accountsdk.Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer",
                    "example": 1
                },
                "page_size": {
                    "type": "integer",
                    "example": 20
                },
                "total": {
                    "type": "integer",
                    "example": 42
                },
                "total_pages": {
                    "type": "integer",
                    "example": 3
                }
            }
        },
        "accountsdk.RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string",
                    "description": "Email must be unique across all accounts, active or not.",
                    "example": "jane@example.com"
                },
                "full_name": {
                    "type": "string",
                    "description": "FullName is the display name, 2 to 255 characters.",
                    "example": "Jane Doe"
                },
                "password": {
                    "type": "string",
                    "description": "Password is at least 8 characters.",
                    "example": "s3cur3P@ssw0rd"
                },
                "phone": {
                    "type": "string",
                    "description": "Phone is optional.",
                    "example": "+919876543210"
                }
            }
        },
        "accountsdk.ResponseMeta": {
            "type": "object",
            "properties": {
                "service": {
                    "type": "string",
                    "example": "user-service"
                },
                "version": {
                    "type": "string",
                    "example": "1.0.0"
                }
            }
        },
        "accountsdk.TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {
                    "type": "string"
                },
                "expires_in": {
                    "type": "integer",
                    "description": "ExpiresIn is the token lifetime in seconds.",
                    "example": 3600
                },
                "token_type": {
                    "type": "string",
                    "example": "bearer"
                }
            }
        },
        "accountsdk.UpdateAccountRequest": {
            "type": "object",
            "properties": {
                "full_name": {
                    "type": "string",
                    "example": "Jane Smith"
                },
                "phone": {
                    "type": "string",
                    "example": "+919876543210"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Accounts Service API",
	Description:      "User account service: registration, password login with JWT access tokens, profile management and soft deletion.\n\nErrors use the envelope {\"error\":{\"code\":\"...\",\"message\":\"...\"}}.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
