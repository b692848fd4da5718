package model

type UserRole string

const (
	Student   UserRole = "STUDENT"
	Professor UserRole = "PROFESSOR"
)

type User struct {
	BaseModel
	Email    string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password string   `gorm:"size:100;not null" json:"-"`
	Name     string   `gorm:"size:100;not null" json:"name"`
	Lastname string   `gorm:"size:100" json:"lastname"`
	Role     UserRole `gorm:"size:20;not null;default:'STUDENT'" json:"role"`

	Courses []Course `gorm:"many2many:user_course_links" json:"courses,omitempty"`
}

func (User) TableName() string {
	return "users"
}
