package httpapi

import (
	"errors"
	"net/http"

	"fanhunt/domain/entities"
)

// Kinds reported by the adapter itself rather than the ledger
const (
	kindInvalidRequest = "invalid_request"
	kindInternal       = "internal"
)

var errInvalidRequest = errors.New("invalid request")

var statusByKind = map[entities.ErrorKind]int{
	entities.KindUnauthenticated:     http.StatusUnauthorized,
	entities.KindCheckpointNotFound:  http.StatusNotFound,
	entities.KindUserNotFound:        http.StatusNotFound,
	entities.KindRewardNotFound:      http.StatusNotFound,
	entities.KindCheckpointInactive:  http.StatusGone,
	entities.KindRewardUnavailable:   http.StatusGone,
	entities.KindOutOfRange:          http.StatusForbidden,
	entities.KindAlreadyRedeemed:     http.StatusConflict,
	entities.KindInsufficientPoints:  http.StatusPaymentRequired,
	entities.KindInvalidCoordinate:   http.StatusBadRequest,
	entities.KindTransactionConflict: http.StatusConflict,
	entities.KindTimeout:             http.StatusGatewayTimeout,
	entities.KindStoreUnavailable:    http.StatusServiceUnavailable,
}

// StatusForKind maps a ledger error kind to its HTTP status code
func StatusForKind(kind entities.ErrorKind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
