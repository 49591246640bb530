package tracker

import "github.com/samber/lo"

// IsOwner reports whether userID owns the project.
func IsOwner(ownerID, userID uint) bool {
	return ownerID == userID
}

// IsParticipant reports whether userID may read and write project content:
// the owner or any member. Membership changes take effect immediately, so
// callers must pass the member set loaded for the current request.
func IsParticipant(ownerID uint, memberIDs []uint, userID uint) bool {
	return ownerID == userID || lo.Contains(memberIDs, userID)
}
