package handler

import (
	"net/http"

	"github.com/vasapolrittideah/linkbridge/services/link-service/internal/usecase"
)

type outcomeResponse struct {
	status  int
	message string
}

// Input rejections are answered with 200: the request was understood and the outcome is the answer.
var linkResponses = map[usecase.LinkOutcome]outcomeResponse{
	usecase.Linked: {
		http.StatusOK,
		"Your account is now linked and your role has been granted.",
	},
	usecase.LinkedRoleGrantFailed: {
		http.StatusAccepted,
		"Your account is linked, but the role could not be granted yet. Run reconcile to try again.",
	},
	usecase.AlreadyLinked: {
		http.StatusOK,
		"You already have a linked account.",
	},
	usecase.InvalidCode: {
		http.StatusOK,
		"That code is invalid or has already been used. Request a new code in game.",
	},
	usecase.LinkStoreUnavailable: {
		http.StatusServiceUnavailable,
		"Linking is temporarily unavailable. Please try again shortly.",
	},
}

var reconcileResponses = map[usecase.ReconcileOutcome]outcomeResponse{
	usecase.Reconciled: {
		http.StatusOK,
		"Your role has been restored.",
	},
	usecase.AlreadyCurrent: {
		http.StatusOK,
		"Your role is already up to date.",
	},
	usecase.NotLinked: {
		http.StatusOK,
		"You have no linked account. Link one with a code from the game first.",
	},
	usecase.RoleUnavailable: {
		http.StatusServiceUnavailable,
		"The linked role is not configured correctly. The server staff have been notified.",
	},
	usecase.GrantFailed: {
		http.StatusServiceUnavailable,
		"Your role could not be updated right now. Please try again shortly.",
	},
	usecase.ReconcileStoreUnavailable: {
		http.StatusServiceUnavailable,
		"Role repair is temporarily unavailable. Please try again shortly.",
	},
}

func linkResponseFor(outcome usecase.LinkOutcome) outcomeResponse {
	if resp, ok := linkResponses[outcome]; ok {
		return resp
	}
	return outcomeResponse{http.StatusInternalServerError, "Something went wrong."}
}

func reconcileResponseFor(outcome usecase.ReconcileOutcome) outcomeResponse {
	if resp, ok := reconcileResponses[outcome]; ok {
		return resp
	}
	return outcomeResponse{http.StatusInternalServerError, "Something went wrong."}
}
