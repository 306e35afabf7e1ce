package logger

// Standard field keys for structured logging.
const (
	KeyOpID      = "op_id"
	KeyOperation = "operation"

	KeyPath    = "path"
	KeyOldPath = "old_path"
	KeyNewPath = "new_path"
	KeySidecar = "sidecar"
	KeyStore   = "store"
	KeyMode    = "mode"
	KeySize    = "size"

	KeyError     = "error"
	KeyDuration  = "duration_ms"
	KeyRecursive = "recursive"
)
