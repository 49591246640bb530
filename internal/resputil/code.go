package resputil

type ErrorCode int

const (
	OK ErrorCode = 0

	// General
	InvalidRequest ErrorCode = 40001

	// Token
	TokenExpired ErrorCode = 40101
	TokenInvalid ErrorCode = 40102

	// Login
	InvalidCredentials ErrorCode = 40106

	// User is not allowed to access the resource
	UserNotAllowed ErrorCode = 40301

	// Referenced entity does not exist
	NotFound ErrorCode = 40401

	// Duplicate key, or delete refused because the target is not empty
	Conflict ErrorCode = 40901

	// Object store or mail transport failed
	UpstreamError ErrorCode = 50201

	// Indicates laziness of the developer
	// Frontend will directly print the message without any translation
	NotSpecified ErrorCode = 99999
)
