package dto

import "github.com/gatherhq/gather/internal/domain/entity"

type ClubInfo struct {
	ID          int64
	Title       string
	Description string
	OwnerID     int64
}

func NewClubInfoFromEntity(club entity.Club) ClubInfo {
	return ClubInfo{
		ID:          club.ID,
		Title:       club.Title,
		Description: club.Description,
		OwnerID:     club.OwnerID,
	}
}

// ClubApplicant is a pending membership as seen by the club owner.
type ClubApplicant struct {
	MembershipID int64
	UserID       int64
	ClubID       int64
}

func NewClubApplicantFromEntity(member entity.ClubMember) ClubApplicant {
	return ClubApplicant{
		MembershipID: member.ID,
		UserID:       member.UserID,
		ClubID:       member.ClubID,
	}
}

// ClubPatch carries the owner-editable club fields; nil means unchanged.
type ClubPatch struct {
	Title       *string
	Description *string
}
