package course

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/stats"
)

type (
	// GradeReport is a student's grades for every course they registered to.
	GradeReport struct {
		Summary Summary        `json:"summary"`
		Courses []CourseResult `json:"courses"`
	}

	// Summary holds the student's GPA along with the GPA statistics of every student
	// that completed at least one course.
	Summary struct {
		Credits   int     `json:"credits"`
		GPA       float64 `json:"gpa"`
		GPATScore float64 `json:"gpa_t_score"`
		GPAAvg    float64 `json:"gpa_avg"`
		GPAMax    float64 `json:"gpa_max"`
		GPAMin    float64 `json:"gpa_min"`
	}

	CourseResult struct {
		Name             string       `json:"name"`
		Code             string       `json:"code"`
		TotalScore       int          `json:"total_score"`
		TotalScoreTScore float64      `json:"total_score_t_score"`
		TotalScoreAvg    float64      `json:"total_score_avg"`
		TotalScoreMax    int          `json:"total_score_max"`
		TotalScoreMin    int          `json:"total_score_min"`
		ClassScores      []ClassScore `json:"class_scores"`
	}

	ClassScore struct {
		ClassID    string `json:"class_id"`
		Title      string `json:"title"`
		Part       int    `json:"part"`
		Score      *int   `json:"score"` // nil when not submitted or not graded yet
		Submitters int    `json:"submitters"`
	}
)

func (svc *service) Grades(ctx context.Context, userID string) (GradeReport, error) {
	report := GradeReport{Courses: make([]CourseResult, 0)}
	opts := &core.TxOptions{ReadOnly: true, Snapshot: true}

	err := svc.inTx(ctx, opts, func(tx Tx) error {
		registered, err := tx.QueryRegisteredCourses(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "querying registered courses")
		}

		var credits, gpaNumerator int
		for _, c := range registered {
			res, err := courseResult(ctx, tx, userID, c.Course)
			if err != nil {
				return err
			}
			report.Courses = append(report.Courses, res)

			// only closed courses count toward the GPA
			if c.Status == StatusClosed {
				gpaNumerator += res.TotalScore * c.Credit
				credits += c.Credit
			}
		}

		var gpa float64
		if credits > 0 {
			gpa = float64(gpaNumerator) / 100 / float64(credits)
		}

		gpas, err := tx.QueryStudentGPAs(ctx)
		if err != nil {
			return errors.Wrap(err, "querying GPAs")
		}

		report.Summary = Summary{
			Credits:   credits,
			GPA:       gpa,
			GPATScore: stats.TScoreFloat64(gpa, gpas),
			GPAAvg:    stats.AverageFloat64(gpas, 0),
			GPAMax:    stats.MaxFloat64(gpas, 0),
			GPAMin:    stats.MinFloat64(gpas, 0),
		}
		return nil
	})
	if err != nil {
		return GradeReport{}, err
	}
	return report, nil
}

func courseResult(ctx context.Context, tx Tx, userID string, c Course) (CourseResult, error) {
	classes, err := tx.QueryClasses(ctx, c.ID, partDesc)
	if err != nil {
		return CourseResult{}, errors.Wrap(err, "querying classes")
	}

	var myTotal int
	scores := make([]ClassScore, 0, len(classes))
	for _, cls := range classes {
		submitters, err := tx.CountSubmissions(ctx, cls.ID)
		if err != nil {
			return CourseResult{}, errors.Wrap(err, "counting submissions")
		}
		score, err := tx.GetScore(ctx, userID, cls.ID)
		if err != nil {
			return CourseResult{}, errors.Wrap(err, "getting score")
		}
		if score != nil {
			myTotal += *score
		}
		scores = append(scores, ClassScore{
			ClassID:    cls.ID,
			Title:      cls.Title,
			Part:       cls.Part,
			Score:      score,
			Submitters: submitters,
		})
	}

	totals, err := tx.QueryCourseTotals(ctx, c.ID)
	if err != nil {
		return CourseResult{}, errors.Wrap(err, "querying course totals")
	}

	return CourseResult{
		Name:             c.Name,
		Code:             c.Code,
		TotalScore:       myTotal,
		TotalScoreTScore: stats.TScoreInt(myTotal, totals),
		TotalScoreAvg:    stats.AverageInt(totals, 0),
		TotalScoreMax:    stats.MaxInt(totals, 0),
		TotalScoreMin:    stats.MinInt(totals, 0),
		ClassScores:      scores,
	}, nil
}
