package seed

import (
	"fmt"
	"io"
	"time"

	"microblog/internal/models"

	"gopkg.in/yaml.v3"
)

// Fixture is a hand-written data set, typically kept in a YAML file:
//
//	users:
//	  - username: alice
//	    email: alice@example.com
//	    follows: [bob]
//	    posts:
//	      - body: hello
//	        at: 2026-01-02T15:04:05Z
//	metrics:
//	  - [Payments, API, "", "99.9", ...]
type Fixture struct {
	Users   []FixtureUser `yaml:"users"`
	Metrics [][]string    `yaml:"metrics"`
}

// FixtureUser is one account of a Fixture.
type FixtureUser struct {
	Username string        `yaml:"username"`
	Email    string        `yaml:"email"`
	Password string        `yaml:"password"`
	AboutMe  string        `yaml:"about_me"`
	Follows  []string      `yaml:"follows"`
	Posts    []FixturePost `yaml:"posts"`
}

// FixturePost is one post of a FixtureUser. A zero At means now.
type FixturePost struct {
	Body string    `yaml:"body"`
	At   time.Time `yaml:"at"`
}

// LoadFixture decodes a YAML fixture.
func LoadFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// ApplyFixture writes every user, follow edge, post and metric of f.
// Users are created before edges so follows may point forward in the file.
func (s *Seeder) ApplyFixture(f *Fixture) error {
	byName := make(map[string]*models.User, len(f.Users))
	for _, fu := range f.Users {
		password := fu.Password
		if password == "" {
			password = DefaultPassword
		}
		hash, err := s.factory.HashPassword(password)
		if err != nil {
			return err
		}
		user, err := s.factory.CreateUser(func(u *models.User) {
			u.Username = fu.Username
			if fu.Email != "" {
				u.Email = fu.Email
			}
			u.AboutMe = fu.AboutMe
			u.PasswordHash = hash
		})
		if err != nil {
			return fmt.Errorf("user %q: %w", fu.Username, err)
		}
		byName[fu.Username] = user
	}

	for _, fu := range f.Users {
		follower := byName[fu.Username]
		for _, name := range fu.Follows {
			followed, ok := byName[name]
			if !ok {
				return fmt.Errorf("user %q follows unknown user %q", fu.Username, name)
			}
			if err := s.factory.CreateFollow(follower, followed); err != nil {
				return err
			}
		}

		posts := make([]*models.Post, 0, len(fu.Posts))
		for _, fp := range fu.Posts {
			at := fp.At
			if at.IsZero() {
				at = time.Now()
			}
			posts = append(posts, &models.Post{Body: fp.Body, UserID: follower.ID, Timestamp: at.UTC()})
		}
		if err := s.factory.CreatePostsBatch(posts); err != nil {
			return fmt.Errorf("posts of %q: %w", fu.Username, err)
		}
	}

	if len(f.Metrics) == 0 {
		return nil
	}
	metrics := make([]*models.Metric, 0, len(f.Metrics))
	for i, row := range f.Metrics {
		m, err := models.MetricFromValues(row)
		if err != nil {
			return fmt.Errorf("metric %d: %w", i+1, err)
		}
		metrics = append(metrics, m)
	}
	return s.db.Create(&metrics).Error
}
