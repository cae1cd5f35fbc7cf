package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/account"
	"github.com/trezcool/ratiba/core/friends"
	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/core/uploads"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	in  io.Reader
	out io.Writer

	conf     *core.Config
	accounts *account.Service
	planner  *schedule.Service
	pipeline *schedule.Pipeline
	friends  *friends.Service
	uploads  *uploads.Service
}

func (cli *commandLine) printUsage() {
	cli.printf("Usage:\n")
	cli.printf("  login -username USERNAME|EMAIL - log in (password prompted)\n")
	cli.printf("  register -username USERNAME -email EMAIL [-name DISPLAYNAME] - create an account (password prompted)\n")
	cli.printf("  logout - log out and clear the local session\n")
	cli.printf("  whoami - show the logged-in profile\n")
	cli.printf("  plan -year YYYY [-term TERM] [-count N] - lay out the upcoming semesters\n")
	cli.printf("  schedule [-semester ID] - show the planned schedule\n")
	cli.printf("  generate -semester ID - build a semester's schedule interactively\n")
	cli.printf("  add-class -semester ID -name NAME [-code CODE] [-credits N] [-professor NAME] [-rmp URL]\n")
	cli.printf("  remove-class -semester ID -class CLASSID\n")
	cli.printf("  previous - list previous classes\n")
	cli.printf("  previous-add -course NAME -semester LABEL [-grade GRADE] [-professor NAME]\n")
	cli.printf("  previous-remove -id ID\n")
	cli.printf("  gpa - average GPA over graded previous classes\n")
	cli.printf("  professors - professor directory for the planned schedule\n")
	cli.printf("  upload -kind pathway|previous|current -file PATH [-notes TEXT]\n")
	cli.printf("  uploads [-kind KIND] - list uploaded documents\n")
	cli.printf("  upload-remove -id ID\n")
	cli.printf("  friends [-search QUERY] - list or search friends\n")
	cli.printf("  share -friend ID [-edit] [-days N] - share the schedule with a friend\n")
	cli.printf("  share-email -email ADDRESS [-note TEXT] - email a schedule summary\n")
}

func (cli *commandLine) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, args...)
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "login":
		cmd := flag.NewFlagSet("login", flag.ExitOnError)
		uname := cmd.String("username", "", "Your username or email. The password will be prompted next.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *uname == "" {
			cmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword("Enter password:")
		if err != nil {
			return err
		}
		if pwd == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.login(*uname, pwd)

	case "register":
		cmd := flag.NewFlagSet("register", flag.ExitOnError)
		uname := cmd.String("username", "", "Desired username.")
		email := cmd.String("email", "", "Your email address.")
		name := cmd.String("name", "", "Display name (optional).")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *uname == "" || *email == "" {
			cmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword("Enter password:")
		if err != nil {
			return err
		}
		confirm, err := cli.promptPassword("Confirm password:")
		if err != nil {
			return err
		}
		if pwd == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.register(*uname, *email, *name, pwd, confirm)

	case "logout":
		return cli.logout()

	case "whoami":
		return cli.whoami()

	case "plan":
		cmd := flag.NewFlagSet("plan", flag.ExitOnError)
		year := cmd.Int("year", time.Now().Year(), "Starting year.")
		term := cmd.String("term", "Fall", "Starting term (Spring, Summer, Fall or Winter).")
		count := cmd.Int("count", 4, "Number of semesters to plan.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.plan(*year, *term, *count)

	case "schedule":
		cmd := flag.NewFlagSet("schedule", flag.ExitOnError)
		semester := cmd.String("semester", "", "Only show this semester, e.g. 2025-Fall.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.showSchedule(*semester)

	case "generate":
		cmd := flag.NewFlagSet("generate", flag.ExitOnError)
		semester := cmd.String("semester", "", "The semester to generate, e.g. 2025-Fall.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *semester == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.generate(*semester)

	case "add-class":
		cmd := flag.NewFlagSet("add-class", flag.ExitOnError)
		semester := cmd.String("semester", "", "The semester to add to, e.g. 2025-Fall.")
		name := cmd.String("name", "", "Class name.")
		code := cmd.String("code", "", "Course code (optional).")
		credits := cmd.Int("credits", 0, "Credit hours (optional).")
		professor := cmd.String("professor", "", "Professor name (optional).")
		rmp := cmd.String("rmp", "", "Rate My Professors link (optional).")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *semester == "" || *name == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.addClass(*semester, schedule.NewClass{
			Name:       *name,
			CourseCode: *code,
			Credits:    *credits,
			Professor:  *professor,
			RMPLink:    *rmp,
		})

	case "remove-class":
		cmd := flag.NewFlagSet("remove-class", flag.ExitOnError)
		semester := cmd.String("semester", "", "The semester to remove from, e.g. 2025-Fall.")
		class := cmd.String("class", "", "The class id.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *semester == "" || *class == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.removeClass(*semester, core.ID(*class))

	case "previous":
		return cli.listPrevious()

	case "previous-add":
		cmd := flag.NewFlagSet("previous-add", flag.ExitOnError)
		course := cmd.String("course", "", "Course name.")
		semester := cmd.String("semester", "", "Semester label, e.g. \"Fall 2023\".")
		grade := cmd.String("grade", "", "Letter grade (optional).")
		professor := cmd.String("professor", "", "Professor name (optional).")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *course == "" || *semester == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.addPrevious(schedule.PreviousClassForm{
			Course:    *course,
			Semester:  *semester,
			Grade:     *grade,
			Professor: *professor,
		})

	case "previous-remove":
		cmd := flag.NewFlagSet("previous-remove", flag.ExitOnError)
		id := cmd.String("id", "", "The previous-class record id.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *id == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.removePrevious(core.ID(*id))

	case "gpa":
		return cli.gpa()

	case "professors":
		return cli.professors()

	case "upload":
		cmd := flag.NewFlagSet("upload", flag.ExitOnError)
		kind := cmd.String("kind", "", "Document kind: pathway, previous or current.")
		file := cmd.String("file", "", "Path to the document.")
		notes := cmd.String("notes", "", "Notes for the document (optional).")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *kind == "" || *file == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.upload(*kind, *file, *notes)

	case "uploads":
		cmd := flag.NewFlagSet("uploads", flag.ExitOnError)
		kind := cmd.String("kind", "", "Only this document kind (optional).")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.listUploads(*kind)

	case "upload-remove":
		cmd := flag.NewFlagSet("upload-remove", flag.ExitOnError)
		id := cmd.String("id", "", "The upload id.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *id == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.removeUpload(core.ID(*id))

	case "friends":
		cmd := flag.NewFlagSet("friends", flag.ExitOnError)
		search := cmd.String("search", "", "Search students by name or email.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.listFriends(*search)

	case "share":
		cmd := flag.NewFlagSet("share", flag.ExitOnError)
		friend := cmd.String("friend", "", "The friend id to share with.")
		edit := cmd.Bool("edit", false, "Allow the friend to edit the schedule.")
		days := cmd.Int("days", 0, "Expire the share after this many days (optional).")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *friend == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.share(core.ID(*friend), *edit, *days)

	case "share-email":
		cmd := flag.NewFlagSet("share-email", flag.ExitOnError)
		email := cmd.String("email", "", "The recipient's email address.")
		note := cmd.String("note", "", "A personal note (optional).")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *email == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.shareByEmail(*email, *note)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword(prompt string) (string, error) {
	cli.printf("%s", prompt)
	pwd, err := readPasswordFunc(syscall.Stdin)
	cli.printf("\n")
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func formatCredits(credits int) string {
	return strconv.Itoa(credits) + " cr"
}
