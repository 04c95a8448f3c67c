// Package catalog_indexer groups and filters the loaded problems into the
// listings shown on the generated pages.
package catalog_indexer

import (
	"sort"
	"unicode"

	"github.com/compprog-lecture-tools/problem-list/problem_repository/models"
)

// ContestGroup holds the problems of one contest, sorted by name
type ContestGroup struct {
	Name     string
	Problems []*models.Problem
}

// CourseGroup holds the contests of one course, sorted by name
type CourseGroup struct {
	Name     string
	Contests []ContestGroup
}

// Group arranges problems by course and contest. The result does not depend
// on the order of the input.
func Group(problems []*models.Problem) []CourseGroup {
	byCourse := make(map[string]map[string][]*models.Problem)
	for _, problem := range problems {
		contests, ok := byCourse[problem.Course]
		if !ok {
			contests = make(map[string][]*models.Problem)
			byCourse[problem.Course] = contests
		}
		contests[problem.Contest] = append(contests[problem.Contest], problem)
	}

	courses := make([]CourseGroup, 0, len(byCourse))
	for courseName, contests := range byCourse {
		course := CourseGroup{Name: courseName, Contests: make([]ContestGroup, 0, len(contests))}
		for contestName, contestProblems := range contests {
			sorted := append([]*models.Problem(nil), contestProblems...)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i].Name < sorted[j].Name
			})
			course.Contests = append(course.Contests, ContestGroup{Name: contestName, Problems: sorted})
		}
		sort.Slice(course.Contests, func(i, j int) bool {
			return course.Contests[i].Name < course.Contests[j].Name
		})
		courses = append(courses, course)
	}

	sort.Slice(courses, func(i, j int) bool {
		ki, kj := CourseSortKey(courses[i].Name), CourseSortKey(courses[j].Name)
		if ki != kj {
			return ki < kj
		}
		return courses[i].Name < courses[j].Name
	})
	return courses
}

// CourseSortKey sorts course names of the form {name}{yy} by year first and
// name second. Names not ending in two digits sort by themselves.
func CourseSortKey(course string) string {
	runes := []rune(course)
	if len(runes) < 2 {
		return course
	}
	suffix := runes[len(runes)-2:]
	if !unicode.IsDigit(suffix[0]) || !unicode.IsDigit(suffix[1]) {
		return course
	}
	return string(suffix) + string(runes[:len(runes)-2])
}
