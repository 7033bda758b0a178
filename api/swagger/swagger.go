package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Teachers API",
        "description": "Teacher registration, authentication and queries",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Token issuance"},
        {"name": "Teachers", "description": "Teacher registration and queries"}
    ],
    "paths": {
        "/auth/authenticate": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AuthenticationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AuthenticationResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/Error"}},
                    "403": {"description": "Inactive account", "schema": {"$ref": "#/definitions/Error"}},
                    "429": {"description": "Too many failed attempts", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/teachers/save": {
            "post": {
                "tags": ["Teachers"],
                "summary": "Register a teacher",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "teacher", "in": "formData", "type": "string", "required": true, "description": "TeacherInsertRequest as JSON"},
                    {"name": "amkaFile", "in": "formData", "type": "file", "required": false}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/TeacherReadOnly"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/Error"}},
                    "409": {"description": "AFM or username already taken", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/teachers/paginated": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List teachers page by page",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer", "default": 0},
                    {"name": "size", "in": "query", "type": "integer", "default": 5}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TeacherPage"}},
                    "400": {"description": "Invalid paging", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/teachers/paginated/sorted": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List teachers page by page in a chosen order",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer", "default": 0},
                    {"name": "size", "in": "query", "type": "integer", "default": 5},
                    {"name": "sortBy", "in": "query", "type": "string", "default": "id"},
                    {"name": "sortDirection", "in": "query", "type": "string", "enum": ["ASC", "DESC"], "default": "ASC"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TeacherPage"}},
                    "400": {"description": "Invalid paging or sort", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/teachers/filtered": {
            "post": {
                "tags": ["Teachers"],
                "summary": "List every teacher matching the filters",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "filters", "in": "body", "required": false, "schema": {"$ref": "#/definitions/TeacherFilters"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/TeacherReadOnly"}}}
                }
            }
        },
        "/teachers/filtered/paginated": {
            "post": {
                "tags": ["Teachers"],
                "summary": "List one page of teachers matching the filters",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "filters", "in": "body", "required": false, "schema": {"$ref": "#/definitions/TeacherFilters"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TeacherPage"}},
                    "400": {"description": "Invalid paging or sort", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/teachers/filtered/export": {
            "post": {
                "tags": ["Teachers"],
                "summary": "Download the filtered teacher list",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"},
                    {"name": "filters", "in": "body", "required": false, "schema": {"$ref": "#/definitions/TeacherFilters"}}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/teachers/{uuid}/amka-file/link": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Issue a signed download link for the teacher's AMKA file",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "uuid", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AttachmentLinkResponse"}},
                    "404": {"description": "Teacher or file not found", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/teachers/{uuid}/amka-file": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Download the teacher's AMKA file with a signed token",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "uuid", "in": "path", "type": "string", "required": true},
                    {"name": "token", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "401": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/Error"}},
                    "404": {"description": "Teacher or file not found", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        }
    },
    "definitions": {
        "AuthenticationRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "AuthenticationResponse": {
            "type": "object",
            "properties": {
                "firstname": {"type": "string"},
                "lastname": {"type": "string"},
                "token": {"type": "string"}
            }
        },
        "TeacherFilters": {
            "type": "object",
            "properties": {
                "uuid": {"type": "string"},
                "userAfm": {"type": "string"},
                "userAmka": {"type": "string"},
                "isActive": {"type": "boolean"},
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "sortBy": {"type": "string"},
                "sortDirection": {"type": "string"}
            }
        },
        "AttachmentReadOnly": {
            "type": "object",
            "properties": {
                "filename": {"type": "string"},
                "savedName": {"type": "string"},
                "contentType": {"type": "string"},
                "extension": {"type": "string"}
            }
        },
        "TeacherReadOnly": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "uuid": {"type": "string"},
                "isActive": {"type": "boolean"},
                "user": {
                    "type": "object",
                    "properties": {
                        "firstname": {"type": "string"},
                        "lastname": {"type": "string"},
                        "afm": {"type": "string"}
                    }
                },
                "personalInfo": {
                    "type": "object",
                    "properties": {
                        "amka": {"type": "string"},
                        "identityNumber": {"type": "string"},
                        "amkaFile": {"$ref": "#/definitions/AttachmentReadOnly"}
                    }
                }
            }
        },
        "TeacherPage": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/TeacherReadOnly"}},
                "totalElements": {"type": "integer"},
                "totalPages": {"type": "integer"},
                "numberOfElements": {"type": "integer"},
                "currentPage": {"type": "integer"},
                "pageSize": {"type": "integer"}
            }
        },
        "AttachmentLinkResponse": {
            "type": "object",
            "properties": {
                "url": {"type": "string"},
                "expiresAt": {"type": "string", "format": "date-time"}
            }
        },
        "Error": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "description": {"type": "string"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
