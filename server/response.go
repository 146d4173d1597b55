package server

import (
	"github.com/kbukum/voicescribe/server/endpoint"
)

// DataResponse is the standard success envelope.
type DataResponse = endpoint.DataResponse

// RespondOK and RespondWithError are re-exported for handlers mounted on
// GinEngine.
var (
	RespondOK        = endpoint.RespondOK
	RespondWithError = endpoint.RespondWithError
)
