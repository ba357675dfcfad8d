package repository

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"postfeed/internal/common"
	"postfeed/internal/logging"
	"postfeed/internal/models"
)

const (
	usersCollection = "users"
	postsCollection = "posts"
)

func firestoreErr(op, id string, err error) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s %s: %w", op, id, common.ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w", op, id, err)
}

// FirestoreUserRepository keeps users/{id} documents in Firestore.
type FirestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) *FirestoreUserRepository {
	return &FirestoreUserRepository{client: client}
}

func (r *FirestoreUserRepository) Save(ctx context.Context, identity *models.Identity) error {
	if identity.ID == "" {
		return fmt.Errorf("save user: empty id: %w", common.ErrValidation)
	}

	if _, err := r.client.Collection(usersCollection).Doc(identity.ID).Set(ctx, identity); err != nil {
		return fmt.Errorf("save user %s: %w", identity.ID, err)
	}

	return nil
}

func (r *FirestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.Identity, error) {
	snap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		return nil, firestoreErr("get user", userID, err)
	}

	var identity models.Identity
	if err := snap.DataTo(&identity); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", userID, err)
	}
	if identity.ID == "" {
		identity.ID = snap.Ref.ID
	}

	return &identity, nil
}

// FirestorePostRepository keeps posts/{id} documents in Firestore and doubles
// as the PostWatcher through collection snapshots.
type FirestorePostRepository struct {
	client *firestore.Client
	logger logging.Logger
}

func NewFirestorePostRepository(client *firestore.Client, logger logging.Logger) *FirestorePostRepository {
	return &FirestorePostRepository{client: client, logger: logger.With("module", "firestore_posts")}
}

func (r *FirestorePostRepository) posts() *firestore.CollectionRef {
	return r.client.Collection(postsCollection)
}

func (r *FirestorePostRepository) Create(ctx context.Context, post *models.Post) error {
	var (
		ref *firestore.DocumentRef
		wr  *firestore.WriteResult
		err error
	)

	if post.ID == "" {
		ref, wr, err = r.posts().Add(ctx, post)
	} else {
		ref = r.posts().Doc(post.ID)
		wr, err = ref.Create(ctx, post)
	}
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	post.ID = ref.ID
	// createdAt is a server timestamp, which equals the commit time
	post.CreatedAt = wr.UpdateTime

	return nil
}

func (r *FirestorePostRepository) decode(snap *firestore.DocumentSnapshot) (models.Post, error) {
	var post models.Post
	if err := snap.DataTo(&post); err != nil {
		return models.Post{}, fmt.Errorf("decode post %s: %w", snap.Ref.ID, err)
	}
	post.ID = snap.Ref.ID
	return post, nil
}

func (r *FirestorePostRepository) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	snap, err := r.posts().Doc(postID).Get(ctx)
	if err != nil {
		return nil, firestoreErr("get post", postID, err)
	}

	post, err := r.decode(snap)
	if err != nil {
		return nil, err
	}

	return &post, nil
}

func (r *FirestorePostRepository) List(ctx context.Context) ([]models.Post, error) {
	it := r.posts().Documents(ctx)
	defer it.Stop()

	posts := make([]models.Post, 0)
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}

		post, err := r.decode(snap)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	return posts, nil
}

func (r *FirestorePostRepository) update(ctx context.Context, op, postID string, updates []firestore.Update) error {
	if _, err := r.posts().Doc(postID).Update(ctx, updates); err != nil {
		return firestoreErr(op, postID, err)
	}
	return nil
}

func (r *FirestorePostRepository) UpdateContent(ctx context.Context, postID, content string) error {
	return r.update(ctx, "update post", postID, []firestore.Update{
		{Path: "content", Value: content},
	})
}

func (r *FirestorePostRepository) Delete(ctx context.Context, postID string) error {
	if _, err := r.posts().Doc(postID).Delete(ctx, firestore.Exists); err != nil {
		return firestoreErr("delete post", postID, err)
	}
	return nil
}

func (r *FirestorePostRepository) AppendImage(ctx context.Context, postID, imageRef string) error {
	return r.update(ctx, "append image", postID, []firestore.Update{
		{Path: "images", Value: firestore.ArrayUnion(imageRef)},
	})
}

func (r *FirestorePostRepository) RemoveImage(ctx context.Context, postID, imageRef string) error {
	return r.update(ctx, "remove image", postID, []firestore.Update{
		{Path: "images", Value: firestore.ArrayRemove(imageRef)},
	})
}

// Watch emits one notification per collection snapshot. The first snapshot
// arrives right after the listener is registered.
func (r *FirestorePostRepository) Watch(ctx context.Context) (<-chan struct{}, error) {
	it := r.posts().Snapshots(ctx)
	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		defer it.Stop()

		for {
			if _, err := it.Next(); err != nil {
				if ctx.Err() == nil && status.Code(err) != codes.Canceled {
					r.logger.Error(ctx, "posts snapshot stream ended", "error", err)
				}
				return
			}

			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()

	return out, nil
}
