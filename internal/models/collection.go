package models

// Collection names the five document collections at the store boundary.
type Collection string

const (
	CollectionUsers       Collection = "users"
	CollectionCourses     Collection = "courses"
	CollectionEnrollments Collection = "enrollments"
	CollectionMaterials   Collection = "materials"
	CollectionGrades      Collection = "grades"
)

func (c Collection) Valid() bool {
	switch c {
	case CollectionUsers, CollectionCourses, CollectionEnrollments, CollectionMaterials, CollectionGrades:
		return true
	}
	return false
}
