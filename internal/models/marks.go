package models

// CourseMarks is one course's assessment columns for one student. Empty
// cells read "Not Graded".
type CourseMarks struct {
	CourseName  string            `json:"course_name"`
	StudentName string            `json:"student_name"`
	Marks       map[string]string `json:"marks"`
}

type StudentMarksResponse struct {
	RollNo  string        `json:"roll_no"`
	Name    string        `json:"name"`
	Courses []CourseMarks `json:"courses"`
}

type GradesheetInfo struct {
	Course   string   `json:"course"`
	File     string   `json:"file"`
	Headers  []string `json:"headers"`
	Students int      `json:"students"`
}
