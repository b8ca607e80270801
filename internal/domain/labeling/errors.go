package labeling

import "github.com/labelprint/backend/internal/domain/shared"

// Rejection codes surfaced to callers. They are part of the public API
// contract consumed by the mobile and web clients.
const (
	CodeWeightRequired       = "WEIGHT_REQUIRED"
	CodeTotalWeightRequired  = "TOTAL_WEIGHT_REQUIRED"
	CodePalletWeightRequired = "PALLET_WEIGHT_REQUIRED"
	CodeInvalidWeight        = "INVALID_WEIGHT"
	CodeInvalidWeightFormat  = "INVALID_WEIGHT_FORMAT"
	CodeInvalidTotal         = "INVALID_TOTAL"
	CodeInvalidPallet        = "INVALID_PALLET"
	CodeInvalidExtra         = "INVALID_EXTRA"
	CodeInvalidCopies        = "INVALID_COPIES"
	CodeInvalidShift         = "INVALID_SHIFT"
	CodeInvalidLabelSize     = "INVALID_LABEL_SIZE"
	CodeNoLabels             = "NO_LABELS"
	CodePrintFailed          = "PRINT_FAILED"
	CodeInternalError        = "INTERNAL_ERROR"
)

var (
	ErrWeightRequired       = shared.NewDomainError(CodeWeightRequired, "Weight information is required")
	ErrTotalWeightRequired  = shared.NewDomainError(CodeTotalWeightRequired, "Total weight is required")
	ErrPalletWeightRequired = shared.NewDomainError(CodePalletWeightRequired, "Pallet weight is required")
	ErrInvalidWeight        = shared.NewDomainError(CodeInvalidWeight, "Pallet and extra weight must be less than total weight")
	ErrInvalidWeightFormat  = shared.NewDomainError(CodeInvalidWeightFormat, "Weights must be numeric")
	ErrInvalidTotal         = shared.NewDomainError(CodeInvalidTotal, "Total weight must be greater than zero")
	ErrInvalidPallet        = shared.NewDomainError(CodeInvalidPallet, "Pallet weight cannot be negative")
	ErrInvalidExtra         = shared.NewDomainError(CodeInvalidExtra, "Extra weight cannot be negative")
	ErrInvalidCopies        = shared.NewDomainError(CodeInvalidCopies, "Number of copies must be between 1 and 100")
	ErrInvalidShift         = shared.NewDomainError(CodeInvalidShift, "Shift must be one of AM, PM, Graveyard")
	ErrInvalidLabelSize     = shared.NewDomainError(CodeInvalidLabelSize, "Label width and height must be positive")
	ErrNoLabels             = shared.NewDomainError(CodeNoLabels, "No labels to print")
	ErrPrintFailed          = shared.NewDomainError(CodePrintFailed, "Printing failed, check the printer settings")
)
