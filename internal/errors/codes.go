package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 프론트엔드에서 이 코드를 기반으로 메시지를 매핑함

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== 인가/권한 (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzAccessDenied = "AUTHZ_ACCESS_DENIED"
	AuthzReviewerOnly = "AUTHZ_REVIEWER_ONLY"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"
	AuthzOwnerOnly    = "AUTHZ_OWNER_ONLY"

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== 인증 요청 (VERIFICATION_) ====================
	VerificationNotFound          = "VERIFICATION_NOT_FOUND"
	VerificationInvalidTransition = "VERIFICATION_INVALID_TRANSITION"
	VerificationDuplicatePending  = "VERIFICATION_DUPLICATE_PENDING"
	VerificationReviewerConflict  = "VERIFICATION_REVIEWER_CONFLICT"
	VerificationNotApproved       = "VERIFICATION_NOT_APPROVED"
	VerificationInvalidOutcome    = "VERIFICATION_INVALID_OUTCOME"

	// ==================== 사건 (CASE_) ====================
	CaseNotFound     = "CASE_NOT_FOUND"
	CaseNumberExists = "CASE_NUMBER_EXISTS"
	CaseClosed       = "CASE_CLOSED"

	// ==================== 문서 (DOCUMENT_) ====================
	DocumentNotFound           = "DOCUMENT_NOT_FOUND"
	DocumentInvalidMetadata    = "DOCUMENT_INVALID_METADATA"
	DocumentUnsupportedBackend = "DOCUMENT_UNSUPPORTED_BACKEND"
	DocumentUploadFailed       = "DOCUMENT_UPLOAD_FAILED"

	// ==================== 감사 로그 (AUDIT_) ====================
	AuditStoreUnavailable = "AUDIT_STORE_UNAVAILABLE"
	AuditExportFailed     = "AUDIT_EXPORT_FAILED"

	// ==================== 알림 (NOTIFICATION_) ====================
	NotificationNotFound  = "NOTIFICATION_NOT_FOUND"
	NotificationForbidden = "NOTIFICATION_FORBIDDEN"

	// ==================== 업로드 (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
