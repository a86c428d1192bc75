// Package httpapi exposes the membership service as a JSON HTTP API.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/louisbranch/memberdesk/internal/platform/errors"
	"github.com/louisbranch/memberdesk/internal/platform/requestctx"
	"github.com/louisbranch/memberdesk/internal/services/membership/domain"
)

// meAlias resolves to the authenticated caller in user routes.
const meAlias = "me"

// Handler serves the membership API.
type Handler struct {
	svc  *domain.Service
	auth AuthConfig
}

// NewHandler builds an API handler over the membership service.
func NewHandler(svc *domain.Service, auth AuthConfig) *Handler {
	return &Handler{svc: svc, auth: auth}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, withLocale(h.authenticated(fn)))
	}

	route("POST /v1/users", h.handleRegister)
	route("GET /v1/users/{id}", h.handleGetUser)
	route("PUT /v1/users/{id}/status", h.handleChangeStatus)
	route("POST /v1/users/{id}/approve", h.handleApprove)
	route("POST /v1/users/{id}/admin", h.handleGrantAdmin)
	route("DELETE /v1/users/{id}/admin", h.handleRevokeAdmin)
	route("GET /v1/users/{id}/groups", h.handleUserGroups)

	route("GET /v1/groups", h.adminOnly(h.handleListGroups))
	route("POST /v1/groups", h.handleCreateGroup)
	route("GET /v1/groups/{id}", h.adminOnly(h.handleGetGroup))
	route("PUT /v1/groups/{id}", h.handleUpdateGroup)
	route("DELETE /v1/groups/{id}", h.handleDeleteGroup)
	route("GET /v1/groups/{id}/members", h.adminOnly(h.handleGroupMembers))
	route("POST /v1/groups/{id}/members", h.handleAddGroupMember)
	route("DELETE /v1/groups/{id}/members/{userID}", h.handleRemoveGroupMember)

	route("GET /v1/sections", h.handleListSections)
	route("POST /v1/sections", h.handleCreateSection)
	route("GET /v1/sections/{id}", h.handleGetSection)
	route("PUT /v1/sections/{id}", h.handleUpdateSection)
	route("DELETE /v1/sections/{id}", h.handleDeleteSection)
	route("GET /v1/sections/{id}/members", h.handleSectionMembers)
	route("GET /v1/sections/{id}/access", h.handleSectionAccess)
	route("POST /v1/sections/{id}/subscription", h.handleSubscribe)
	route("DELETE /v1/sections/{id}/subscription", h.handleUnsubscribe)
}

func callerID(r *http.Request) string {
	return requestctx.UserIDFromContext(r.Context())
}

// userPathID returns the {id} path value with "me" resolved to the caller.
func userPathID(r *http.Request) string {
	value := strings.TrimSpace(r.PathValue("id"))
	if value == meAlias {
		return callerID(r)
	}
	return value
}

// requireSelfOrAdmin allows callers to read their own records and admins
// to read anyone's.
func (h *Handler) requireSelfOrAdmin(ctx context.Context, caller string, target string) error {
	if caller == target {
		return nil
	}
	isAdmin, err := h.svc.IsAdmin(ctx, caller)
	if err != nil {
		return fmt.Errorf("check caller admin claim: %w", err)
	}
	if !isAdmin {
		return apperrors.New(apperrors.CodePermissionDenied, "caller may only read their own profile")
	}
	return nil
}

// adminOnly rejects callers without the admin claim.
func (h *Handler) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isAdmin, err := h.svc.IsAdmin(r.Context(), callerID(r))
		if err != nil {
			h.writeError(w, r, fmt.Errorf("check caller admin claim: %w", err))
			return
		}
		if !isAdmin {
			h.writeError(w, r, apperrors.New(apperrors.CodePermissionDenied, "admin claim required"))
			return
		}
		next(w, r)
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	user, err := h.svc.Register(r.Context(), domain.RegisterInput{
		UserID:          callerID(r),
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		RequestedStatus: req.RequestedStatus,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newUserResponse(user))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	target := userPathID(r)
	if err := h.requireSelfOrAdmin(r.Context(), callerID(r), target); err != nil {
		h.writeError(w, r, err)
		return
	}
	profile, err := h.svc.Profile(r.Context(), target)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileResponse(profile))
}

func (h *Handler) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	user, err := h.svc.ChangeStatus(r.Context(), domain.ChangeStatusInput{
		ActorID:  callerID(r),
		TargetID: userPathID(r),
		Status:   req.Status,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.ApprovePending(r.Context(), callerID(r), userPathID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *Handler) handleGrantAdmin(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.GrantAdmin(r.Context(), callerID(r), userPathID(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRevokeAdmin(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RevokeAdmin(r.Context(), callerID(r), userPathID(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUserGroups(w http.ResponseWriter, r *http.Request) {
	target := userPathID(r)
	if err := h.requireSelfOrAdmin(r.Context(), callerID(r), target); err != nil {
		h.writeError(w, r, err)
		return
	}
	groupIDs, err := h.svc.UserGroups(r.Context(), target)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, idsResponse{IDs: nonNil(groupIDs)})
}

func (h *Handler) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.ListGroups(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]groupResponse, 0, len(groups))
	for _, group := range groups {
		out = append(out, newGroupResponse(group))
	}
	writeJSON(w, http.StatusOK, groupListResponse{Groups: out})
}

func (h *Handler) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	group, err := h.svc.CreateGroup(r.Context(), callerID(r), req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newGroupResponse(group))
}

func (h *Handler) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.svc.GetGroup(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGroupResponse(group))
}

func (h *Handler) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	group, err := h.svc.UpdateGroup(r.Context(), callerID(r), r.PathValue("id"), req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGroupResponse(group))
}

func (h *Handler) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteGroup(r.Context(), callerID(r), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGroupMembers(w http.ResponseWriter, r *http.Request) {
	memberIDs, err := h.svc.GroupMembers(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, idsResponse{IDs: nonNil(memberIDs)})
}

func (h *Handler) handleAddGroupMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.AddGroupMember(r.Context(), callerID(r), r.PathValue("id"), req.UserID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemoveGroupMember(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveGroupMember(r.Context(), callerID(r), r.PathValue("id"), r.PathValue("userID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.svc.ListSections(r.Context(), callerID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]sectionResponse, 0, len(sections))
	for _, sec := range sections {
		out = append(out, newSectionResponse(sec))
	}
	writeJSON(w, http.StatusOK, sectionListResponse{Sections: out})
}

func (h *Handler) handleCreateSection(w http.ResponseWriter, r *http.Request) {
	var req sectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	sec, err := h.svc.CreateSection(r.Context(), callerID(r), req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSectionResponse(sec))
}

func (h *Handler) handleGetSection(w http.ResponseWriter, r *http.Request) {
	sec, err := h.svc.GetSection(r.Context(), callerID(r), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSectionResponse(sec))
}

func (h *Handler) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	var req sectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	sec, err := h.svc.UpdateSection(r.Context(), callerID(r), r.PathValue("id"), req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSectionResponse(sec))
}

func (h *Handler) handleDeleteSection(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSection(r.Context(), callerID(r), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSectionMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.SectionMembers(r.Context(), callerID(r), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]memberResponse, 0, len(members))
	for _, member := range members {
		out = append(out, newMemberResponse(member))
	}
	writeJSON(w, http.StatusOK, memberListResponse{Members: out})
}

func (h *Handler) handleSectionAccess(w http.ResponseWriter, r *http.Request) {
	access, err := h.svc.SectionAccess(r.Context(), callerID(r), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accessResponse{
		CanView:      access.CanView,
		IsMember:     access.IsMember,
		CanSubscribe: access.CanSubscribe,
	})
}

func (h *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Subscribe(r.Context(), callerID(r), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Unsubscribe(r.Context(), callerID(r), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
