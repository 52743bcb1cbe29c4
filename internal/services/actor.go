package services

import (
	"github.com/okovalenko/coursereview-backend/internal/models"
	"gorm.io/gorm"
)

// Actor carries the identity and granted capabilities of the user performing
// an operation. It is passed explicitly into every engine call instead of
// being looked up from ambient request state.
type Actor struct {
	UserID      uint
	SiteRole    string
	CourseRoles map[uint]string // course id -> enrolment role
}

// IsSiteAdmin reports whether the actor holds the site-wide admin role.
func (a Actor) IsSiteAdmin() bool {
	return a.SiteRole == models.RoleAdmin
}

// CanGive reports whether the actor may rate and review the course.
// Any enrolled user may; site admins always may.
func (a Actor) CanGive(courseID uint) bool {
	if a.IsSiteAdmin() {
		return true
	}
	_, enrolled := a.CourseRoles[courseID]
	return enrolled
}

// CanModerate reports whether the actor may moderate reviews of the course.
func (a Actor) CanModerate(courseID uint) bool {
	role := a.CourseRoles[courseID]
	return role == models.CourseRoleTeacher || role == models.CourseRoleManager
}

// CanModerateAll reports whether the actor may moderate reviews site-wide.
func (a Actor) CanModerateAll() bool {
	return a.IsSiteAdmin()
}

// CanViewAll reports whether the actor may see other users' reviews of the course.
func (a Actor) CanViewAll(courseID uint) bool {
	return a.CanModerate(courseID) || a.CanModerateAll()
}

// LoadActor builds an Actor from the stored user and enrolment records.
func LoadActor(db *gorm.DB, userID uint) (Actor, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return Actor{}, err
	}

	var enrolments []models.Enrolment
	if err := db.Where("user_id = ?", userID).Find(&enrolments).Error; err != nil {
		return Actor{}, err
	}

	actor := Actor{
		UserID:      user.ID,
		SiteRole:    user.Role,
		CourseRoles: make(map[uint]string, len(enrolments)),
	}
	for _, e := range enrolments {
		actor.CourseRoles[e.CourseID] = e.Role
	}
	return actor, nil
}
