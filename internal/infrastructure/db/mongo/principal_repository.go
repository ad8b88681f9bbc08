package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/casdu/portal-api/internal/core/domain"
	"github.com/casdu/portal-api/internal/core/ports"
)

const (
	principalCollection = "common_users"
	counterCollection   = "counters"
)

// PrincipalRepository persists principals in MongoDB. The unique index on
// username is the arbiter of the first-login race: concurrent creates for
// the same CID resolve to exactly one row, the loser sees
// ErrUsernameConflict.
type PrincipalRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewPrincipalRepository(db *mongo.Database) *PrincipalRepository {
	return &PrincipalRepository{
		coll:     db.Collection(principalCollection),
		counters: db.Collection(counterCollection),
	}
}

// EnsureIndexes creates the unique username index. Call once at startup.
func (r *PrincipalRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create username index: %w", err)
	}
	return nil
}

type principalDoc struct {
	ID           int64  `bson:"_id"`
	Username     string `bson:"username"`
	PasswordHash string `bson:"password_hash"`
	DisplayName  string `bson:"displayname,omitempty"`
	FirstName    string `bson:"firstname,omitempty"`
	LastName     string `bson:"lastname,omitempty"`
	Email        string `bson:"email,omitempty"`
	JobTitle     string `bson:"jobtitle,omitempty"`
	Role         string `bson:"role"`
	Status       string `bson:"status"`
	IsAdmin      bool   `bson:"isadmin"`
	CreatedAt    int64  `bson:"created_at"`
	UpdatedAt    int64  `bson:"updated_at"`
}

func (d *principalDoc) toDomain() *domain.Principal {
	return &domain.Principal{
		ID:           d.ID,
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		DisplayName:  d.DisplayName,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		JobTitle:     d.JobTitle,
		Role:         d.Role,
		Status:       d.Status,
		IsAdmin:      d.IsAdmin,
		CreatedAt:    unixToTime(d.CreatedAt),
		UpdatedAt:    unixToTime(d.UpdatedAt),
	}
}

// nextID allocates a surrogate key from an atomic counter document.
func (r *PrincipalRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(
		ctx,
		bson.M{"_id": principalCollection},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate principal id: %w", err)
	}
	return counter.Seq, nil
}

func (r *PrincipalRepository) Create(ctx context.Context, p *domain.Principal) (*domain.Principal, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}

	doc := principalDoc{
		ID:           id,
		Username:     p.Username,
		PasswordHash: p.PasswordHash,
		DisplayName:  p.DisplayName,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		JobTitle:     p.JobTitle,
		Role:         p.Role,
		Status:       p.Status,
		IsAdmin:      p.Role == domain.RoleAdmin,
		CreatedAt:    p.CreatedAt.Unix(),
		UpdatedAt:    p.UpdatedAt.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUsernameConflict
		}
		return nil, fmt.Errorf("insert principal: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *PrincipalRepository) FindByUsername(ctx context.Context, username string) (*domain.Principal, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *PrincipalRepository) FindByID(ctx context.Context, id int64) (*domain.Principal, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *PrincipalRepository) findOne(ctx context.Context, filter bson.M) (*domain.Principal, error) {
	var doc principalDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("find principal: %w", err)
	}
	return doc.toDomain(), nil
}

// Update applies a partial update. This is the single write path for role:
// whenever role is in the patch, isadmin is derived and written in the same
// operation so the two fields cannot drift. A caller-supplied isadmin is
// honored only when role is absent (legacy escape hatch).
func (r *PrincipalRepository) Update(ctx context.Context, id int64, patch ports.PrincipalPatch) (*domain.Principal, error) {
	set := bson.M{}
	if patch.DisplayName != nil {
		set["displayname"] = *patch.DisplayName
	}
	if patch.FirstName != nil {
		set["firstname"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["lastname"] = *patch.LastName
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.JobTitle != nil {
		set["jobtitle"] = *patch.JobTitle
	}
	if patch.Role != nil {
		set["role"] = *patch.Role
		set["isadmin"] = *patch.Role == domain.RoleAdmin
	} else if patch.IsAdmin != nil {
		set["isadmin"] = *patch.IsAdmin
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.PasswordHash != nil {
		set["password_hash"] = *patch.PasswordHash
	}

	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}
	set["updated_at"] = time.Now().UTC().Unix()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("update principal: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrPrincipalNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *PrincipalRepository) List(ctx context.Context) ([]*domain.Principal, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list principals: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Principal
	for cur.Next(ctx) {
		var doc principalDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode principal: %w", err)
		}
		out = append(out, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list principals: %w", err)
	}
	return out, nil
}

func (r *PrincipalRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete principal: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPrincipalNotFound
	}
	return nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
