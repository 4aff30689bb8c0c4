package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection(usersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	user.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.ErrDuplicateEmail
		}
		return apperr.Upstream("failed to create user", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, notFound("failed to fetch user", err)
	}
	return &user, nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "password", Value: 0}}).
		SetSort(bson.D{{Key: "name", Value: 1}})
	return findAll[models.User](ctx, r.collection, bson.M{"role": role}, opts, "failed to fetch users")
}

func (r *UserRepository) ListByAssignedCollector(ctx context.Context, collectorID primitive.ObjectID) ([]models.User, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "password", Value: 0}}).
		SetSort(bson.D{{Key: "name", Value: 1}})
	filter := bson.M{"role": models.RoleResident, "assigned_collector": collectorID}
	return findAll[models.User](ctx, r.collection, filter, opts, "failed to fetch users")
}

func (r *UserRepository) SetAssignedCollector(ctx context.Context, residentID, collectorID primitive.ObjectID, at time.Time) error {
	return r.set(ctx, residentID, bson.M{"assigned_collector": collectorID, "updated_at": at})
}

func (r *UserRepository) SetPhotoKey(ctx context.Context, id primitive.ObjectID, key string, at time.Time) error {
	return r.set(ctx, id, bson.M{"photo_key": key, "updated_at": at})
}

func (r *UserRepository) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return apperr.Upstream("failed to update user", err)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate, at time.Time) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	fields := bson.M{"updated_at": at}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Address != nil {
		fields["address"] = *update.Address
	}
	if update.PhoneNumber != nil {
		fields["phone_number"] = *update.PhoneNumber
	}

	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&user); err != nil {
		return nil, notFound("failed to update user", err)
	}
	return &user, nil
}

func (r *UserRepository) CountByAssignedCollector(ctx context.Context) (map[primitive.ObjectID]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"role":               models.RoleResident,
			"assigned_collector": bson.M{"$exists": true, "$ne": nil},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$assigned_collector",
			"count": bson.M{"$sum": 1},
		}}},
	}
	rows, err := aggregate[struct {
		CollectorID primitive.ObjectID `bson:"_id"`
		Count       int                `bson:"count"`
	}](ctx, r.collection, pipeline, "failed to count assignments")
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]int, len(rows))
	for _, row := range rows {
		out[row.CollectorID] = row.Count
	}
	return out, nil
}
