package model

type Test struct {
	BaseModel
	Title     string `gorm:"size:255;not null" json:"title"`
	CreatorID uint   `gorm:"index" json:"creatorId"`
	CourseID  uint   `gorm:"index" json:"courseId"`

	Takers    []User     `gorm:"many2many:user_test_links" json:"-"`
	Keywords  []Keyword  `gorm:"many2many:keyword_test_links" json:"keywords,omitempty"`
	Questions []Question `gorm:"foreignKey:TestID" json:"questions,omitempty"`
}

func (Test) TableName() string {
	return "tests"
}
