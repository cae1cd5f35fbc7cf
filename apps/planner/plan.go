package main

import (
	"context"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
)

func (cli *commandLine) plan(year int, term string, count int) error {
	ctx := context.Background()
	semesters := cli.planner.Plan(year, term, count)
	if err := cli.planner.Reload(ctx); err != nil {
		cli.printf("warning: could not load the saved schedule: %s\n", err)
	} else {
		semesters = cli.planner.Semesters()
	}
	cli.printSemesters(semesters)
	return nil
}

func (cli *commandLine) showSchedule(semesterID string) error {
	if err := cli.planner.Reload(context.Background()); err != nil {
		return err
	}
	if semesterID != "" {
		sem, ok := cli.planner.Semester(semesterID)
		if !ok {
			return schedule.ErrSemesterNotFound
		}
		cli.printSemesters([]schedule.Semester{sem})
		return nil
	}
	cli.printSemesters(cli.planner.Semesters())
	return nil
}

func (cli *commandLine) printSemesters(semesters []schedule.Semester) {
	if len(semesters) == 0 {
		cli.printf("Nothing planned yet. Run \"plan\" first.\n")
		return
	}
	for _, sem := range semesters {
		status := ""
		if cli.planner.IsGenerated(sem.ID) {
			status = " [generated]"
		}
		cli.printf("%s %d (%s)%s\n", sem.Name, sem.Year, sem.ID, status)
		if len(sem.Classes) == 0 {
			cli.printf("  no classes yet\n")
			continue
		}
		for _, cls := range sem.Classes {
			cli.printClass(cls)
		}
	}
}

func (cli *commandLine) printClass(cls schedule.Class) {
	label := cls.Name
	if cls.CourseCode.Valid {
		label = cls.CourseCode.String + " " + label
	}
	cli.printf("  [%s] %s, %s, %s\n", cls.ID, label, formatCredits(cls.Credits), cls.Professor)
	if cls.RMPLink != "" {
		cli.printf("      %s\n", cls.RMPLink)
	}
}

func (cli *commandLine) addClass(semesterID string, nc schedule.NewClass) error {
	cls, err := cli.planner.AddClass(context.Background(), semesterID, nc)
	if err != nil {
		return err
	}
	cli.printf("Added to %s:\n", semesterID)
	cli.printClass(cls)
	return nil
}

func (cli *commandLine) removeClass(semesterID string, classID core.ID) error {
	if err := cli.planner.RemoveClass(context.Background(), semesterID, classID); err != nil {
		return err
	}
	cli.printf("Removed class %s from %s\n", classID, semesterID)
	return nil
}

func (cli *commandLine) listPrevious() error {
	records, err := cli.planner.LoadPreviousClasses(context.Background())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		cli.printf("No previous classes recorded.\n")
		return nil
	}
	for _, rec := range records {
		grade := rec.Grade
		if grade == "" {
			grade = "-"
		}
		cli.printf("[%s] %s, %s: %s", rec.ID, rec.Course, rec.Semester, grade)
		if rec.Professor != "" {
			cli.printf(" (%s)", rec.Professor)
		}
		cli.printf("\n")
	}
	return nil
}

func (cli *commandLine) addPrevious(f schedule.PreviousClassForm) error {
	rec, err := cli.planner.AddPreviousClass(context.Background(), f)
	if err != nil {
		return err
	}
	cli.printf("Recorded %s (%s)\n", rec.Course, rec.Semester)
	return nil
}

func (cli *commandLine) removePrevious(id core.ID) error {
	if err := cli.planner.RemovePreviousClass(context.Background(), id); err != nil {
		return err
	}
	cli.printf("Removed previous class %s\n", id)
	return nil
}

func (cli *commandLine) gpa() error {
	if _, err := cli.planner.LoadPreviousClasses(context.Background()); err != nil {
		return err
	}
	avg, graded, ok := cli.planner.AverageGPA()
	if !ok {
		cli.printf("No graded classes yet.\n")
		return nil
	}
	cli.printf("Average GPA: %.2f (over %d graded classes)\n", avg, graded)
	return nil
}

func (cli *commandLine) professors() error {
	if err := cli.planner.Reload(context.Background()); err != nil {
		return err
	}
	entries := cli.planner.ProfessorDirectory()
	if len(entries) == 0 {
		cli.printf("No professors scheduled yet.\n")
		return nil
	}
	for _, entry := range entries {
		cli.printf("%s\n", entry.Professor)
		if entry.RMPLink != "" {
			cli.printf("  %s\n", entry.RMPLink)
		}
		for _, course := range entry.Courses {
			cli.printf("  - %s (%s, %s)\n", course.Name, course.Semester, formatCredits(course.Credits))
		}
	}
	return nil
}
