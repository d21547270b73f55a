package repo

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/hireflow/interviewd/internal/interviews"
	"github.com/hireflow/interviewd/pkg/errors"
	"github.com/hireflow/interviewd/pkg/logger"
	"github.com/hireflow/interviewd/pkg/tools/retry"
)

var collectionIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "interviewer_id", Value: 1}, {Key: "status", Value: 1}, {Key: "scheduled_at", Value: 1}},
		Options: options.Index().SetName("interviewer_window"),
	},
	{
		Keys:    bson.D{{Key: "candidate_id", Value: 1}, {Key: "status", Value: 1}, {Key: "scheduled_at", Value: 1}},
		Options: options.Index().SetName("candidate_window"),
	},
	{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "reminder_sent", Value: 1}, {Key: "scheduled_at", Value: 1}},
		Options: options.Index().SetName("reminder_scan"),
	},
	{
		Keys:    bson.D{{Key: "candidate_id", Value: 1}, {Key: "job_id", Value: 1}},
		Options: options.Index().SetName("flow"),
	},
}

func NewMongo(ctx context.Context, cfg MongoConfig, log logger.Logger) (*mongoRepo, error) {
	opts := options.Client().
		ApplyURI(cfg.URL).
		SetTimeout(cfg.Timeout)

	if cfg.Auth.Username != "" {
		opts = opts.SetAuth(options.Credential{
			Username: cfg.Auth.Username,
			Password: cfg.Auth.Password,
		})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.WrapFail(err, "connect to mongo db")
	}

	collection := client.Database(cfg.Database).Collection(cfg.Collection)

	_, err = collection.Indexes().CreateMany(ctx, collectionIndexes)
	if err != nil {
		return nil, errors.WrapFail(err, "create indexes")
	}

	return &mongoRepo{
		coll: collection,
		log:  log.With("mongo_repo"),
	}, nil
}

type mongoRepo struct {
	coll *mongo.Collection
	log  logger.Logger
}

func (m *mongoRepo) Insert(ctx context.Context, i interviews.Interview) (string, error) {
	_, err := m.coll.InsertOne(ctx, i)
	if err != nil {
		return "", errors.WrapFail(err, "insert interview")
	}
	return i.ID, nil
}

func (m *mongoRepo) Get(ctx context.Context, id string) (*interviews.Interview, error) {
	result := m.coll.FindOne(ctx, bson.M{"_id": id})

	if errors.Is(result.Err(), mongo.ErrNoDocuments) {
		return nil, &interviews.NotFoundError{ID: id}
	}
	if result.Err() != nil {
		return nil, errors.WrapFail(result.Err(), "find interview")
	}

	var i interviews.Interview
	err := result.Decode(&i)
	if err != nil {
		return nil, errors.WrapFail(err, "decode interview")
	}

	return &i, nil
}

// Update re-reads, mutates and conditionally replaces the document. The
// replace is pinned to the revision that was read, so of two concurrent
// writers exactly one matches; the loser re-reads and re-applies, and a
// transition made illegal by the winner fails on the fresh document.
func (m *mongoRepo) Update(ctx context.Context, id string, mutate func(*interviews.Interview) error) (*interviews.Interview, error) {
	var updated *interviews.Interview

	attempt := func(ctx context.Context) error {
		i, err := m.Get(ctx, id)
		if err != nil {
			return err
		}

		guard := updateGuard(i)
		if err := mutate(i); err != nil {
			return err
		}

		result, err := m.coll.ReplaceOne(ctx, guard, i)
		if err != nil {
			return errors.WrapFail(m.mapTransient(err), "replace interview")
		}
		if result.MatchedCount == 0 {
			return errors.Wrap(interviews.ErrTransient, "interview changed underneath")
		}

		updated = i
		return nil
	}

	transient := func(err error) bool {
		return errors.Is(err, interviews.ErrTransient)
	}

	err := retry.Do(ctx, retry.Policy{}.WithDefaults(), transient, attempt)
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// updateGuard selects the exact revision a mutation was computed from.
func updateGuard(i *interviews.Interview) bson.M {
	return bson.M{
		"_id":        i.ID,
		"status":     i.Status,
		"updated_at": i.UpdatedAt,
	}
}

func (m *mongoRepo) FindConflicts(ctx context.Context, q interviews.ConflictQuery) ([]interviews.Interview, error) {
	var roles bson.A
	if q.InterviewerID != nil {
		roles = append(roles, bson.M{"interviewer_id": *q.InterviewerID})
	}
	if q.CandidateID != nil {
		roles = append(roles, bson.M{"candidate_id": *q.CandidateID})
	}
	if len(roles) == 0 {
		return nil, errors.Fail("build conflict filter without participants")
	}

	// half-open overlap: scheduled_at < q.End && ends_at > q.Start
	filter := bson.M{
		"status":       bson.M{"$in": interviews.ActiveStatuses()},
		"scheduled_at": bson.M{"$lt": q.End},
		"ends_at":      bson.M{"$gt": q.Start},
		"$or":          roles,
	}
	if q.ExcludeID != "" {
		filter["_id"] = bson.M{"$ne": q.ExcludeID}
	}

	return m.findAll(ctx, filter, options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}}))
}

func (m *mongoRepo) FindFlow(ctx context.Context, candidateID, jobID int64) ([]interviews.Interview, error) {
	flow, err := m.findAll(ctx, bson.M{
		"candidate_id": candidateID,
		"job_id":       jobID,
	}, options.Find())
	if err != nil {
		return nil, err
	}

	// round tags sort by ordinal, not lexicographically
	sort.Slice(flow, func(a, b int) bool {
		if flow[a].Round.Ordinal() != flow[b].Round.Ordinal() {
			return flow[a].Round.Ordinal() < flow[b].Round.Ordinal()
		}
		return flow[a].ScheduledAt.Before(flow[b].ScheduledAt)
	})

	return flow, nil
}

func (m *mongoRepo) FindDueReminders(ctx context.Context, from, to time.Time) ([]interviews.Interview, error) {
	filter := bson.M{
		"status":        bson.M{"$in": []interviews.Status{interviews.StatusScheduled, interviews.StatusRescheduled}},
		"reminder_sent": false,
		"scheduled_at":  bson.M{"$gte": from, "$lte": to},
	}

	return m.findAll(ctx, filter, options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}}))
}

func (m *mongoRepo) MarkReminded(ctx context.Context, id string) (bool, error) {
	result, err := m.coll.UpdateOne(
		ctx,
		bson.M{"_id": id, "reminder_sent": false},
		bson.M{"$set": bson.M{"reminder_sent": true, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, errors.WrapFail(err, "mark interview reminded")
	}

	if result.ModifiedCount == 1 {
		return true, nil
	}

	n, err := m.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, errors.WrapFail(err, "check interview existence")
	}
	if n == 0 {
		return false, &interviews.NotFoundError{ID: id}
	}

	// already reminded
	return false, nil
}

// WithTxn wraps fn in one mongo transaction: snapshot reads, majority
// writes. Write skew between a conflict check and an insert aborts with a
// transient label, which surfaces as ErrTransient for the service to retry.
func (m *mongoRepo) WithTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.coll.Database().Client().StartSession()
	if err != nil {
		return errors.WrapFail(err, "start mongo session")
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	err = mongo.WithSession(ctx, session, func(sc mongo.SessionContext) error {
		if err := session.StartTransaction(txnOpts); err != nil {
			return errors.WrapFail(err, "start txn")
		}

		if err := fn(sc); err != nil {
			if abortErr := session.AbortTransaction(sc); abortErr != nil {
				m.log.Warn(errors.WrapFail(abortErr, "abort txn"))
			}
			return err
		}

		return errors.WrapFail(session.CommitTransaction(sc), "commit txn")
	})

	return m.mapTransient(err)
}

func (m *mongoRepo) mapTransient(err error) error {
	if err == nil {
		return nil
	}

	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) &&
		(serverErr.HasErrorLabel("TransientTransactionError") || serverErr.HasErrorLabel("UnknownTransactionCommitResult")) {
		return errors.Wrap(interviews.ErrTransient, err.Error())
	}

	return err
}

func (m *mongoRepo) findAll(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]interviews.Interview, error) {
	cur, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.WrapFail(err, "find interviews")
	}

	defer func() {
		err := cur.Close(ctx)
		if err != nil {
			m.log.Warn(errors.WrapFail(err, "close cursor"))
		}
	}()

	var found []interviews.Interview
	for cur.Next(ctx) {
		var i interviews.Interview

		err := cur.Decode(&i)
		if err != nil {
			return nil, errors.WrapFail(err, "decode interview")
		}

		found = append(found, i)
	}

	if cur.Err() != nil {
		return nil, errors.WrapFail(cur.Err(), "iterate interviews")
	}

	return found, nil
}

func (m *mongoRepo) Close(ctx context.Context) error {
	err := m.coll.Database().Client().Disconnect(ctx)
	return errors.WrapFail(err, "close mongo db connection")
}
