package model

// KeywordHierarchy is the per-course keyword tree, identified by its root
// keyword. A course owns at most one hierarchy.
type KeywordHierarchy struct {
	BaseModel
	RootID *uint `gorm:"index" json:"rootId"`
}

func (KeywordHierarchy) TableName() string {
	return "keyword_hierarchies"
}

// Keyword is one node of a hierarchy. ParentID is nil only for the synthetic
// root; every other keyword has exactly one parent within the same hierarchy.
type Keyword struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	Definition  string `gorm:"type:text" json:"definition"`
	ParentID    *uint  `gorm:"index" json:"parentId"`
	HierarchyID *uint  `gorm:"index" json:"hierarchyId"`

	Tests []Test `gorm:"many2many:keyword_test_links" json:"-"`
}

func (Keyword) TableName() string {
	return "keywords"
}
