package main

import (
	"bufio"
	"context"
	"strconv"
	"strings"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
)

// generate drives one interactive schedule-generation run: for each generated
// course the student picks a professor, skips the pick or abandons the run.
func (cli *commandLine) generate(semesterID string) error {
	ctx := context.Background()
	if err := cli.planner.Reload(ctx); err != nil {
		return err
	}

	run, err := cli.pipeline.Start(ctx, semesterID)
	if err != nil {
		return err
	}
	cli.printf("Generated %d courses for %s\n", len(run.Courses), semesterID)

	scanner := bufio.NewScanner(cli.in)
	for {
		run, ok := cli.pipeline.Active()
		if !ok {
			break
		}
		course, ok := run.CurrentCourse()
		if !ok {
			break
		}
		cli.printCourse(run, course)

		cli.printf("Pick a professor [1-%d], (s)kip or (q)uit: ", len(course.Professors))
		if !scanner.Scan() {
			cli.pipeline.Abandon()
			cli.printf("\nRun abandoned.\n")
			return scanner.Err()
		}

		switch input := strings.TrimSpace(scanner.Text()); input {
		case "q", "quit":
			cli.pipeline.Abandon()
			cli.printf("Run abandoned. Nothing else was saved.\n")
			return nil
		case "s", "skip", "":
			if err := cli.pipeline.Skip(ctx); err != nil {
				cli.printf("Could not save the class: %s\nYour pick is still pending, try again.\n", err)
			}
		default:
			pick, err := strconv.Atoi(input)
			if err != nil || pick < 1 || pick > len(course.Professors) {
				cli.printf("Unrecognized choice %q\n", input)
				continue
			}
			if err := cli.pipeline.Choose(ctx, course.Professors[pick-1]); err != nil {
				cli.printf("Could not save the class: %s\nYour pick is still pending, try again.\n", err)
			}
		}
	}

	if sem, ok := cli.planner.Semester(semesterID); ok {
		cli.printf("Done. %s %d now has %d classes:\n", sem.Name, sem.Year, len(sem.Classes))
		for _, cls := range sem.Classes {
			cli.printClass(cls)
		}
	}
	return nil
}

func (cli *commandLine) printCourse(run schedule.Run, course core.GeneratedCourse) {
	label := course.CourseName
	if course.CourseCode.Valid {
		label = course.CourseCode.String + " " + label
	}
	cli.printf("\n%d/%d %s (%s)\n", run.Current+1, len(run.Courses), label, formatCredits(course.Credits))

	for i, prof := range course.Professors {
		cli.printf("  %d. %s: %.1f/5, difficulty %.1f, %.0f%% would take again\n",
			i+1, prof.Name, prof.AvgRating, prof.AvgDifficulty, prof.WouldTakeAgainPercent)
		if len(prof.TeacherTags) > 0 {
			cli.printf("     tags: %s\n", strings.Join(prof.TeacherTags, ", "))
		}
	}
	if len(course.Professors) == 0 {
		cli.printf("  no professor candidates found, skip to keep the class with a TBD professor\n")
	}

	if rec, ok := run.Recommendations[schedule.CourseKey(course)]; ok {
		for _, line := range rec.Recommendations {
			cli.printf("  ai: %s\n", line)
		}
	}
}
