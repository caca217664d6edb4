package wellness

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/cogniwell/internal/domain/health"
)

// Activity ids used by the weekly template.
const (
	ActivityCheckIn            = "daily-checkin"
	ActivityMindfulness        = "mindfulness"
	ActivityFacialExercises    = "facial-exercises"
	ActivitySpeechArticulation = "speech-articulation"
	ActivityWordRetrieval      = "word-retrieval"
	ActivityMemoryTraining     = "memory-training"
	ActivitySocialEngagement   = "social-engagement"
	ActivityPhysicalExercise   = "physical-exercise"
)

const (
	planTitle        = "Personalized Cognitive Wellness Plan"
	adaptabilityNote = "This schedule is a suggestion. Move activities to the days and times that suit you, and skip or shorten sessions on days you feel tired."
	// lowConfidenceThreshold gates the channel specific exercises.
	lowConfidenceThreshold = 0.7
	// memoryScoreThreshold gates memory training on the composite score.
	memoryScoreThreshold = 70
	memoryConcern        = "memory"
)

// ScoreInput is the slice of a composite score the synthesizer needs.
type ScoreInput struct {
	Score          int                `json:"score"`
	Status         health.ScoreStatus `json:"status"`
	AreasOfConcern []string           `json:"areasOfConcern"`
}

// DefaultScore stands in for users without any computed score.
func DefaultScore() ScoreInput {
	return ScoreInput{Score: 75, Status: health.StatusModerate, AreasOfConcern: []string{}}
}

var (
	checkIn = health.Activity{
		ID:              ActivityCheckIn,
		Title:           "Daily Cognitive Check-in",
		Description:     "Complete a short speech and facial check-in to keep your trends up to date.",
		Frequency:       "daily",
		DurationMinutes: 5,
		Difficulty:      "easy",
		Category:        "monitoring",
	}
	mindfulness = health.Activity{
		ID:              ActivityMindfulness,
		Title:           "Mindfulness Practice",
		Description:     "Guided breathing or a body scan to lower stress and support focus.",
		Frequency:       "daily",
		DurationMinutes: 10,
		Difficulty:      "easy",
		Category:        "wellness",
	}
	facialExercises = health.Activity{
		ID:              ActivityFacialExercises,
		Title:           "Facial Expression Exercises",
		Description:     "Mirror exercises that practice a range of expressions to keep facial muscles engaged.",
		Frequency:       "3x-weekly",
		DurationMinutes: 15,
		Difficulty:      "moderate",
		Category:        "facial",
	}
	speechArticulation = health.Activity{
		ID:              ActivitySpeechArticulation,
		Title:           "Speech Articulation Practice",
		Description:     "Read a short passage aloud, focusing on clear pronunciation and steady pacing.",
		Frequency:       "daily",
		DurationMinutes: 15,
		Difficulty:      "moderate",
		Category:        "speech",
	}
	wordRetrieval = health.Activity{
		ID:              ActivityWordRetrieval,
		Title:           "Word Retrieval Exercises",
		Description:     "Category naming and word association games to strengthen vocabulary recall.",
		Frequency:       "2x-weekly",
		DurationMinutes: 20,
		Difficulty:      "challenging",
		Category:        "speech",
	}
	memoryTraining = health.Activity{
		ID:              ActivityMemoryTraining,
		Title:           "Memory Enhancement Training",
		Description:     "Adaptive recall exercises that adjust difficulty to your recent performance.",
		Frequency:       "daily",
		DurationMinutes: 20,
		Difficulty:      "adaptive",
		Category:        "cognitive",
	}
	socialEngagement = health.Activity{
		ID:              ActivitySocialEngagement,
		Title:           "Social Engagement Activity",
		Description:     "Call a friend, join a group class, or meet someone for a walk.",
		Frequency:       "weekly",
		DurationMinutes: 60,
		Difficulty:      "moderate",
		Category:        "social",
	}
	physicalExercise = health.Activity{
		ID:              ActivityPhysicalExercise,
		Title:           "Physical Exercise Session",
		Description:     "Moderate aerobic exercise such as brisk walking, cycling, or swimming.",
		Frequency:       "3x-weekly",
		DurationMinutes: 30,
		Difficulty:      "moderate",
		Category:        "physical",
	}
)

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// weeklyTemplate lists, per weekday, every activity that may be scheduled. Activities that are
// not part of a plan are dropped when the schedule is built.
var weeklyTemplate = map[string][]string{
	"monday":    {ActivityCheckIn, ActivityMindfulness, ActivityFacialExercises, ActivitySpeechArticulation, ActivityMemoryTraining},
	"tuesday":   {ActivityCheckIn, ActivityMindfulness, ActivitySpeechArticulation, ActivityWordRetrieval, ActivityMemoryTraining, ActivityPhysicalExercise},
	"wednesday": {ActivityCheckIn, ActivityMindfulness, ActivityFacialExercises, ActivitySpeechArticulation, ActivityMemoryTraining},
	"thursday":  {ActivityCheckIn, ActivityMindfulness, ActivitySpeechArticulation, ActivityMemoryTraining, ActivityPhysicalExercise},
	"friday":    {ActivityCheckIn, ActivityMindfulness, ActivityFacialExercises, ActivitySpeechArticulation, ActivityWordRetrieval, ActivityMemoryTraining},
	"saturday":  {ActivityCheckIn, ActivityMindfulness, ActivitySpeechArticulation, ActivityMemoryTraining, ActivitySocialEngagement, ActivityPhysicalExercise},
	"sunday":    {ActivityCheckIn, ActivityMindfulness, ActivitySpeechArticulation, ActivityMemoryTraining},
}

var timeOfDay = map[string]string{
	ActivityCheckIn:            "morning",
	ActivityMindfulness:        "evening",
	ActivityFacialExercises:    "morning",
	ActivitySpeechArticulation: "afternoon",
	ActivityWordRetrieval:      "afternoon",
	ActivityMemoryTraining:     "morning",
	ActivitySocialEngagement:   "afternoon",
	ActivityPhysicalExercise:   "morning",
}

// Synthesize builds a plan from the composite score and recent detections.
// The result is not persisted and has no id or owner.
func Synthesize(score ScoreInput, recent []health.DetectionResult, now time.Time) health.WellnessPlan {
	activities := []health.Activity{checkIn, mindfulness}

	if anyLowConfidence(recent, health.DetectionFacial) {
		activities = append(activities, facialExercises)
	}
	if anyLowConfidence(recent, health.DetectionSpeech) {
		activities = append(activities, speechArticulation, wordRetrieval)
	}
	if score.Score < memoryScoreThreshold || containsFold(score.AreasOfConcern, memoryConcern) {
		activities = append(activities, memoryTraining)
	}
	if anyIndicator(recent, health.DetectionBehavioral, health.IndicatorSocialWithdrawal) {
		activities = append(activities, socialEngagement)
	}
	activities = append(activities, physicalExercise)

	return health.WellnessPlan{
		Title:       planTitle,
		Description: describe(score.AreasOfConcern),
		Activities:  activities,
		Schedule:    buildSchedule(activities),
		CreatedAt:   now,
	}
}

func describe(areas []string) string {
	focus := "overall cognitive health"
	if len(areas) > 0 {
		focus = strings.Join(areas, ", ")
	}
	return "A personalized plan focused on " + focus + ", built from your most recent assessments."
}

func buildSchedule(activities []health.Activity) health.Schedule {
	included := make(map[string]bool, len(activities))
	recommended := make(map[string]string, len(activities))
	for _, a := range activities {
		included[a.ID] = true
		if slot, ok := timeOfDay[a.ID]; ok {
			recommended[a.ID] = slot
		}
	}
	distribution := make(map[string][]string, len(weekdays))
	for _, day := range weekdays {
		ids := make([]string, 0, len(weeklyTemplate[day]))
		for _, id := range weeklyTemplate[day] {
			if included[id] {
				ids = append(ids, id)
			}
		}
		distribution[day] = ids
	}
	return health.Schedule{
		RecommendedTimeOfDay: recommended,
		WeeklyDistribution:   distribution,
		AdaptabilityNote:     adaptabilityNote,
	}
}

func anyLowConfidence(results []health.DetectionResult, channel health.DetectionType) bool {
	for _, r := range results {
		if r.DetectionType == channel && r.ConfidenceScore < lowConfidenceThreshold {
			return true
		}
	}
	return false
}

func anyIndicator(results []health.DetectionResult, channel health.DetectionType, name health.IndicatorName) bool {
	for _, r := range results {
		if r.DetectionType == channel && r.RiskIndicators.Truthy(name) {
			return true
		}
	}
	return false
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}

// assign gives a synthesized plan its identity.
func assign(plan health.WellnessPlan, userID uuid.UUID) health.WellnessPlan {
	plan.ID = uuid.New()
	plan.UserID = userID
	plan.IsActive = true
	return plan
}
