package httpapi

import (
	"github.com/louisbranch/memberdesk/internal/membership/access"
	"github.com/louisbranch/memberdesk/internal/membership/section"
	"github.com/louisbranch/memberdesk/internal/membership/status"
	"github.com/louisbranch/memberdesk/internal/services/membership/domain"
)

type registerRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	RequestedStatus string `json:"requested_status"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type memberRequest struct {
	UserID string `json:"user_id"`
}

type groupRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Statuses     []string `json:"statuses"`
	Members      []string `json:"members"`
	Subscribable bool     `json:"subscribable"`
}

func (req groupRequest) input() domain.GroupInput {
	return domain.GroupInput{
		Name:         req.Name,
		Description:  req.Description,
		Statuses:     req.Statuses,
		Members:      req.Members,
		Subscribable: req.Subscribable,
	}
}

type sectionRequest struct {
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	ViewingGroupIDs []string `json:"viewing_group_ids"`
	MemberGroupIDs  []string `json:"member_group_ids"`
}

func (req sectionRequest) input() domain.SectionInput {
	return domain.SectionInput{
		Name:            req.Name,
		Type:            req.Type,
		ViewingGroupIDs: req.ViewingGroupIDs,
		MemberGroupIDs:  req.MemberGroupIDs,
	}
}

type userResponse struct {
	ID              string `json:"id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Status          string `json:"status"`
	RequestedStatus string `json:"requested_status,omitempty"`
}

func newUserResponse(user access.User) userResponse {
	return userResponse{
		ID:              user.ID,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Email:           user.Email,
		Status:          string(user.Status),
		RequestedStatus: string(user.RequestedStatus),
	}
}

type profileResponse struct {
	User     userResponse `json:"user"`
	IsAdmin  bool         `json:"is_admin"`
	GroupIDs []string     `json:"group_ids"`
}

func newProfileResponse(profile domain.Profile) profileResponse {
	return profileResponse{
		User:     newUserResponse(profile.User),
		IsAdmin:  profile.IsAdmin,
		GroupIDs: nonNil(profile.GroupIDs),
	}
}

type groupResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Statuses     []string `json:"statuses"`
	Members      []string `json:"members"`
	Subscribable bool     `json:"subscribable"`
}

func newGroupResponse(group access.Group) groupResponse {
	return groupResponse{
		ID:           group.ID,
		Name:         group.Name,
		Description:  group.Description,
		Statuses:     statusStrings(group.Statuses),
		Members:      nonNil(group.Members),
		Subscribable: group.Subscribable,
	}
}

type groupListResponse struct {
	Groups []groupResponse `json:"groups"`
}

type groupRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type sectionResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	ViewingGroups []groupRef `json:"viewing_groups"`
	MemberGroups  []groupRef `json:"member_groups"`
}

func newSectionResponse(sec section.Section) sectionResponse {
	refs := func(groups []access.Group) []groupRef {
		out := make([]groupRef, 0, len(groups))
		for _, group := range groups {
			out = append(out, groupRef{ID: group.ID, Name: group.Name})
		}
		return out
	}
	return sectionResponse{
		ID:            sec.ID,
		Name:          sec.Name,
		Type:          string(sec.Type),
		ViewingGroups: refs(sec.ViewingGroups),
		MemberGroups:  refs(sec.MemberGroups),
	}
}

type sectionListResponse struct {
	Sections []sectionResponse `json:"sections"`
}

type memberResponse struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Status    string `json:"status"`
}

func newMemberResponse(member section.Member) memberResponse {
	return memberResponse{
		UserID:    member.UserID,
		FirstName: member.FirstName,
		LastName:  member.LastName,
		Email:     member.Email,
		Status:    string(member.Status),
	}
}

type memberListResponse struct {
	Members []memberResponse `json:"members"`
}

type accessResponse struct {
	CanView      bool `json:"can_view"`
	IsMember     bool `json:"is_member"`
	CanSubscribe bool `json:"can_subscribe"`
}

type idsResponse struct {
	IDs []string `json:"ids"`
}

func statusStrings(values []status.Status) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, string(value))
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
