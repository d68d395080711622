package model

import "slices"

// TeacherSubjects is the catalogue offered on teacher signup.
var TeacherSubjects = []string{
	"Algebra", "Geometry", "Calculus", "Trigonometry", "Statistics",
	"Probability", "Linear Algebra", "Number Theory",
	"Physics", "Chemistry", "Biology", "Astronomy", "Earth Science",
	"Environmental Science", "Biochemistry", "Genetics",
	"Programming", "Web Development", "Python", "JavaScript", "Java", "C++",
	"Data Structures", "Algorithms", "Machine Learning", "Cybersecurity",
	"English", "Hindi", "Spanish", "French", "German", "Mandarin",
	"History", "Geography", "Political Science", "Sociology", "Psychology",
	"Philosophy", "Economics", "Business Studies",
	"Music Theory", "Piano", "Guitar", "Drawing", "Painting", "Photography",
	"Graphic Design", "Mechanical Engineering", "Electrical Engineering",
	"Civil Engineering", "Robotics", "Anatomy", "Nutrition", "Yoga",
	"Accounting", "Marketing", "Project Management", "Excel",
	"SAT Prep", "IELTS", "TOEFL", "JEE Prep", "NEET Prep",
	"Mathematics (K-12)", "Science (K-12)", "Social Studies",
	"Study Skills", "Homework Help", "Career Counseling",
}

// ProfileSubjects is the shorter list offered when editing a teacher profile.
var ProfileSubjects = []string{
	"Mathematics", "Science", "English", "Physics", "Chemistry", "Biology",
	"Computer Science", "History", "Geography", "Art", "Music", "Physical Education",
}

// IsKnownSubject reports whether s is in either catalogue.
func IsKnownSubject(s string) bool {
	return slices.Contains(ProfileSubjects, s) || slices.Contains(TeacherSubjects, s)
}
