package httpapi

import (
	"net/http"
	"strings"

	"denialdesk.org/internal/audit"
	"denialdesk.org/internal/claims"
	"denialdesk.org/internal/obs"
)

func (a *API) handleClaimsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listClaims(w, r)
	case http.MethodPost:
		a.createClaim(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleClaimResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/claims/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if id := strings.TrimSuffix(path, "/deny"); id != path && !strings.Contains(id, "/") {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.denyClaim(w, r, id)
		return
	}

	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	a.getClaim(w, r, path)
}

func (a *API) listClaims(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrFail(w, r)
	if !ok {
		return
	}
	items, err := a.claims.List(r.Context(), principal)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if items == nil {
		items = []*claims.Claim{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) createClaim(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrFail(w, r)
	if !ok {
		return
	}
	var req claims.CreateClaimInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	detail, err := a.claims.Create(r.Context(), principal, req)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	obs.ClaimCreated("form")
	for _, iss := range detail.Issues {
		obs.IssueFlagged(iss.Type)
	}
	_ = audit.LogEvent(r.Context(), "claims.create", map[string]any{
		"claim_id":     detail.Claim.ID,
		"claim_number": detail.Claim.ClaimNumber,
		"issues":       len(detail.Issues),
	})

	w.Header().Set("Location", "/v1/claims/"+detail.Claim.ID)
	writeJSON(w, http.StatusCreated, detail)
}

func (a *API) getClaim(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := principalOrFail(w, r)
	if !ok {
		return
	}
	detail, err := a.claims.Get(r.Context(), principal, id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if detail.Denials == nil {
		detail.Denials = []*claims.Denial{}
	}
	if detail.Issues == nil {
		detail.Issues = []*claims.Issue{}
	}
	writeJSON(w, http.StatusOK, detail)
}

func (a *API) denyClaim(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := principalOrFail(w, r)
	if !ok {
		return
	}
	var req claims.DenyClaimInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	denial, err := a.claims.Deny(r.Context(), principal, id, req)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	obs.ClaimDenied()
	_ = audit.LogEvent(r.Context(), "claims.deny", map[string]any{
		"claim_id":    id,
		"denial_id":   denial.ID,
		"denial_code": denial.Code,
	})
	writeJSON(w, http.StatusCreated, denial)
}

func (a *API) handleDenialCodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := principalOrFail(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"codes": claims.DenialCodes()})
}
