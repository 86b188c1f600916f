// Package seed provides helpers to create demo data for the application database.
// These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"microblog/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every generated account.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rnd  *rand.Rand
	now  time.Time

	passwordHash string
	seq          int
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	return &Factory{
		db:   db,
		opts: opts,
		//nolint:gosec // Weak random number generator is fine for seeding
		rnd: rand.New(rand.NewSource(seed)),
		now: time.Now().UTC(),
	}
}

// HashPassword returns the stored hash for password, honoring SkipBcrypt.
func (f *Factory) HashPassword(password string) (string, error) {
	if f.opts.SkipBcrypt {
		return password, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// BuildUser constructs an unsaved user with a unique username.
func (f *Factory) BuildUser(overrides ...func(*models.User)) (*models.User, error) {
	if f.passwordHash == "" {
		hash, err := f.HashPassword(DefaultPassword)
		if err != nil {
			return nil, err
		}
		f.passwordHash = hash
	}

	f.seq++
	username := fmt.Sprintf("%s_%d", sanitizeUsername(gofakeit.Username()), f.seq)
	user := &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@%s", strings.ToLower(username), gofakeit.DomainName()),
		PasswordHash: f.passwordHash,
		AboutMe:      truncate(gofakeit.Sentence(12), models.MaxAboutMeLength),
		LastSeen:     f.pastTime(),
	}
	for _, override := range overrides {
		override(user)
	}
	return user, nil
}

// CreateUser builds and persists a user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user, err := f.BuildUser(overrides...)
	if err != nil {
		return nil, err
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs an unsaved post by user with a timestamp in the last MaxDays days.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Body:      truncate(gofakeit.Sentence(f.rnd.Intn(14)+3), models.MaxPostLength),
		UserID:    user.ID,
		Timestamp: f.pastTime(),
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.CreateInBatches(posts, f.batchSize()).Error
}

// CreateFollow persists the edge follower -> followed. Existing edges are kept.
func (f *Factory) CreateFollow(follower, followed *models.User) error {
	if follower.ID == followed.ID {
		return nil
	}
	return f.db.Where(models.Follow{FollowerID: follower.ID, FollowedID: followed.ID}).
		FirstOrCreate(&models.Follow{}).Error
}

// BuildMetric constructs an unsaved registry record.
func (f *Factory) BuildMetric(creator *models.User) *models.Metric {
	directions := []string{"up", "down"}
	m := &models.Metric{
		ServiceName:               gofakeit.AppName(),
		ServiceElementName:        gofakeit.BS(),
		ServiceLevelDetail:        gofakeit.Sentence(10),
		Target:                    models.MeasureOf(float64(900+f.rnd.Intn(100)) / 10),
		ServiceProviderSteward1:   gofakeit.Company(),
		MetricName:                truncate(gofakeit.HipsterSentence(3), 120),
		MetricDescription:         gofakeit.Paragraph(1, 2, 12, " "),
		MetricRationale:           gofakeit.Sentence(8),
		MetricValueDisplayFormat:  "percent",
		ThresholdTarget:           models.MeasureOf(float64(f.rnd.Intn(40) + 60)),
		ThresholdTargetRationale:  gofakeit.Sentence(6),
		ThresholdTargetDirection:  directions[f.rnd.Intn(len(directions))],
		ThresholdTrigger:          models.MeasureOf(float64(f.rnd.Intn(40) + 20)),
		ThresholdTriggerRationale: gofakeit.Sentence(6),
		ThresholdTriggerDirection: directions[f.rnd.Intn(len(directions))],
		DataSource:                gofakeit.AppName(),
		DataUpdateFrequency:       gofakeit.RandomString([]string{"hourly", "daily", "weekly", "monthly"}),
		MetricOwnerPrimary:        gofakeit.Name(),
		VantageControlID:          fmt.Sprintf("VC-%04d", f.rnd.Intn(10000)),
	}
	if creator != nil {
		m.UserID = &creator.ID
	}
	return m
}

func (f *Factory) batchSize() int {
	if f.opts.BatchSize > 0 {
		return f.opts.BatchSize
	}
	return 100
}

// pastTime returns a moment within the last MaxDays days.
func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rnd.Int63n(int64(maxDays) * int64(24*time.Hour)))
	return f.now.Add(-back).Truncate(time.Second)
}

func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return truncate(b.String(), 48)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
