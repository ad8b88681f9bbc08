package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/casdu/portal-api/internal/core/domain"
)

const employeeCollection = "employees"

// EmployeeRepository is the read-only view of the HR roster. The collection
// is populated by an external import job; this subsystem never writes it.
type EmployeeRepository struct {
	coll *mongo.Collection
}

func NewEmployeeRepository(db *mongo.Database) *EmployeeRepository {
	return &EmployeeRepository{coll: db.Collection(employeeCollection)}
}

type employeeDoc struct {
	CID       string `bson:"cid"`
	FirstName string `bson:"firstname"`
	LastName  string `bson:"lastname"`
	Email     string `bson:"email"`
	Position  string `bson:"position"`
	IsActive  bool   `bson:"isactive"`
}

func (r *EmployeeRepository) FindByCID(ctx context.Context, cid string) (*domain.EmployeeRecord, error) {
	var doc employeeDoc
	if err := r.coll.FindOne(ctx, bson.M{"cid": cid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return &domain.EmployeeRecord{
		CID:       doc.CID,
		FirstName: doc.FirstName,
		LastName:  doc.LastName,
		Email:     doc.Email,
		Position:  doc.Position,
		IsActive:  doc.IsActive,
	}, nil
}
