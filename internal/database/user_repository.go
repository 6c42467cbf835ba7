package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blog-platform/internal/models"
	"blog-platform/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserDocument represents the MongoDB schema for a user
type UserDocument struct {
	ID        string    `bson:"_id"`
	Username  string    `bson:"username"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"` // bcrypt hash
	Role      string    `bson:"role"`
	Avatar    string    `bson:"avatar,omitempty"`
	Bio       string    `bson:"bio,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

func userToDocument(user *models.User) *UserDocument {
	role := user.Role
	if role == "" {
		role = models.RoleUser
	}
	return &UserDocument{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Password:  user.HashedPassword,
		Role:      string(role),
		Avatar:    user.Avatar,
		Bio:       user.Bio,
		CreatedAt: user.CreatedAt,
	}
}

func documentToUser(doc *UserDocument) (*models.User, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %w", err)
	}
	return &models.User{
		ID:             id,
		Username:       doc.Username,
		Email:          doc.Email,
		HashedPassword: doc.Password,
		Role:           models.Role(doc.Role),
		Avatar:         doc.Avatar,
		Bio:            doc.Bio,
		CreatedAt:      doc.CreatedAt,
	}, nil
}

// CreateUser inserts a new user. Username or email collisions surface as USER_ALREADY_EXISTS.
func (m *MongoDB) CreateUser(ctx context.Context, user *models.User) error {
	_, err := m.Users.InsertOne(ctx, userToDocument(user))
	if mongo.IsDuplicateKeyError(err) {
		return utils.NewAppError(utils.ErrUserAlreadyExists, "User already exists", err)
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (m *MongoDB) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc UserDocument
	err := m.Users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return documentToUser(&doc)
}

// GetUser retrieves a user from MongoDB by their ID
func (m *MongoDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.findUser(ctx, bson.M{"_id": id.String()})
}

func (m *MongoDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"username": username})
}

func (m *MongoDB) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	return m.findUser(ctx, loginFilter(login))
}

func loginFilter(login string) bson.M {
	return bson.M{"$or": []bson.M{
		{"username": login},
		{"email": strings.ToLower(login)},
	}}
}

// UserExists reports whether the username or the email is taken.
func (m *MongoDB) UserExists(ctx context.Context, username, email string) (bool, error) {
	filter := bson.M{"$or": []bson.M{
		{"username": username},
		{"email": strings.ToLower(email)},
	}}
	n, err := m.Users.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return n > 0, nil
}

func (m *MongoDB) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := m.Users.Find(ctx, bson.M{"_id": bson.M{"$in": uuidStrings(ids)}})
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		user, err := documentToUser(&doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration failed: %w", err)
	}
	return users, nil
}

// ListUserIDs returns the id of every user. Only _id is fetched.
func (m *MongoDB) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := m.Users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query user ids: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []uuid.UUID
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user id: %w", err)
		}
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			// Not one of ours; it can never match a uuid author reference anyway.
			continue
		}
		ids = append(ids, id)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration failed: %w", err)
	}
	return ids, nil
}

func (m *MongoDB) HasAdmin(ctx context.Context) (bool, error) {
	err := m.Users.FindOne(ctx, bson.M{"role": string(models.RoleAdmin)},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}
	return true, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
