package seed

import (
	"fmt"

	"microblog/internal/middleware"
	"microblog/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers       int
	PostsPerUser   int
	FollowsPerUser int
	NumMetrics     int
	MaxDays        int
	BatchSize      int
	// SkipBcrypt stores DefaultPassword unhashed; such accounts cannot log in.
	SkipBcrypt bool
	// RandomSeed makes runs reproducible when non-zero.
	RandomSeed int64
}

// Seeder populates a database with a follow graph, posts and registry metrics.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder returns a Seeder writing to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts), opts: opts}
}

// Factory exposes the underlying entity factory.
func (s *Seeder) Factory() *Factory {
	return s.factory
}

// ClearAll deletes every seeded row, children first.
func (s *Seeder) ClearAll() error {
	middleware.Logger.Info("clearing existing data")
	tx := s.db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&models.Follow{}, &models.Post{}, &models.Metric{}, &models.User{}} {
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run seeds users, a follow mesh between them, their posts and metrics.
func (s *Seeder) Run() ([]*models.User, error) {
	middleware.Logger.Info("seeding database",
		"users", s.opts.NumUsers,
		"posts_per_user", s.opts.PostsPerUser,
		"metrics", s.opts.NumMetrics,
	)

	users, err := s.SeedUsers(s.opts.NumUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to create users: %w", err)
	}
	edges, err := s.SeedFollowMesh(users, s.opts.FollowsPerUser)
	if err != nil {
		return nil, fmt.Errorf("failed to create follows: %w", err)
	}
	posts, err := s.SeedPosts(users, s.opts.PostsPerUser)
	if err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	var creator *models.User
	if len(users) > 0 {
		creator = users[0]
	}
	metrics, err := s.SeedMetrics(creator, s.opts.NumMetrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	middleware.Logger.Info("database seeding completed",
		"users", len(users), "follows", edges, "posts", posts, "metrics", metrics)
	return users, nil
}

// SeedUsers creates count users.
func (s *Seeder) SeedUsers(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		u, err := s.factory.CreateUser()
		if err != nil {
			return users, err
		}
		users = append(users, u)
	}
	return users, nil
}

// SeedFollowMesh makes every user follow up to perUser others, chosen at random.
// It returns the number of edges written.
func (s *Seeder) SeedFollowMesh(users []*models.User, perUser int) (int, error) {
	if len(users) < 2 || perUser <= 0 {
		return 0, nil
	}
	perUser = min(perUser, len(users)-1)

	edges := 0
	for i, u := range users {
		added := 0
		for _, j := range s.factory.rnd.Perm(len(users)) {
			if added == perUser {
				break
			}
			if j == i {
				continue
			}
			if err := s.factory.CreateFollow(u, users[j]); err != nil {
				return edges, err
			}
			added++
			edges++
		}
	}
	return edges, nil
}

// SeedPosts creates perUser posts for each user.
func (s *Seeder) SeedPosts(users []*models.User, perUser int) (int, error) {
	posts := make([]*models.Post, 0, len(users)*perUser)
	for _, u := range users {
		for i := 0; i < perUser; i++ {
			posts = append(posts, s.factory.BuildPost(u))
		}
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return 0, err
	}
	return len(posts), nil
}

// SeedMetrics creates count registry records owned by creator, which may be nil.
func (s *Seeder) SeedMetrics(creator *models.User, count int) (int, error) {
	if count <= 0 {
		return 0, nil
	}
	metrics := make([]*models.Metric, 0, count)
	for i := 0; i < count; i++ {
		metrics = append(metrics, s.factory.BuildMetric(creator))
	}
	if err := s.db.CreateInBatches(metrics, s.factory.batchSize()).Error; err != nil {
		return 0, err
	}
	return len(metrics), nil
}
