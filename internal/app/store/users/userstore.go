package userstore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/apperr"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/normalize"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Collection is the users collection name.
const Collection = "users"

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 12

var (
	// ErrDuplicateUsername is returned when the folded username is taken.
	ErrDuplicateUsername = apperr.Validation("That username is already taken.")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = apperr.Validation("An account with this email already exists.")
	// ErrInvalidCredentials covers both unknown usernames and wrong passwords.
	ErrInvalidCredentials = apperr.Authentication("Invalid username or password.")

	errBadRole    = apperr.Validation(`role must be "user" or "admin"`)
	errNoUsername = apperr.Validation("username is required")
	errNoPassword = apperr.Validation("password is required")
	errNotFound   = apperr.NotFound("user not found")
)

// dummyHash is compared against when the username does not exist so that
// unknown and known usernames take the same time to reject.
var (
	dummyOnce sync.Once
	dummyHash []byte
)

func compareDummy(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), BcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// NewUser carries the fields accepted at registration.
type NewUser struct {
	Username string
	Email    string
	Password string
	Role     models.Role
}

// Create hashes the password and inserts the user. Uniqueness of the folded
// username and of the email is enforced by unique indexes.
func (s *Store) Create(ctx context.Context, in NewUser) (models.User, error) {
	username := normalize.Username(in.Username)
	if username == "" {
		return models.User{}, errNoUsername
	}
	if in.Password == "" {
		return models.User{}, errNoPassword
	}
	role, ok := models.ParseRole(string(in.Role))
	if !ok {
		return models.User{}, errBadRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), BcryptCost)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		UsernameCI:   text.Fold(username),
		Email:        normalize.Email(in.Email),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			if strings.Contains(err.Error(), "uniq_users_email") {
				return models.User{}, ErrDuplicateEmail
			}
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByUsername looks a user up by folded username.
func (s *Store) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return s.findOne(ctx, bson.M{"username_ci": text.Fold(normalize.Username(username))})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, errNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// Authenticate verifies username and password. Any mismatch yields
// ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	u, err := s.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			compareDummy(password)
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// UsernamesByID resolves display names for a set of user ids. Unknown ids
// are absent from the result.
func (s *Store) UsernamesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var u struct {
			ID       primitive.ObjectID `bson:"_id"`
			Username string             `bson:"username"`
		}
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out[u.ID] = u.Username
	}
	return out, cur.Err()
}

// EnsureAdmin creates an admin account unless a user with that username
// already exists. An existing account is left untouched, whatever its role.
func (s *Store) EnsureAdmin(ctx context.Context, username, email, password string) (created bool, err error) {
	_, err = s.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return false, err
	}
	_, err = s.Create(ctx, NewUser{
		Username: username,
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	})
	if errors.Is(err, ErrDuplicateUsername) {
		// Lost a race with another instance.
		return false, nil
	}
	return err == nil, err
}
