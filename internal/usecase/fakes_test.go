package usecase

import (
	"context"
	"path/filepath"
	"strconv"

	"locar-esign/internal/domain/entity"
	"locar-esign/internal/domain/repository"
)

// fakeClient implements assinafy.Client with per-operation functions and
// call counters.
type fakeClient struct {
	uploadFn   func(ctx context.Context, filePath string) (string, error)
	statusFn   func(ctx context.Context, documentID string) (entity.DocumentStatus, error)
	findFn     func(ctx context.Context, email string) (*entity.Signer, error)
	createFn   func(ctx context.Context, fullName, email string) (*entity.Signer, error)
	requestFn  func(ctx context.Context, documentID string, signerIDs []string) (string, error)
	downloadFn func(ctx context.Context, documentID, destPath string) bool

	uploadCalls   int
	statusCalls   int
	findCalls     int
	createCalls   int
	requestCalls  int
	downloadCalls int
}

func (f *fakeClient) Upload(ctx context.Context, filePath string) (string, error) {
	f.uploadCalls++
	return f.uploadFn(ctx, filePath)
}

func (f *fakeClient) GetStatus(ctx context.Context, documentID string) (entity.DocumentStatus, error) {
	f.statusCalls++
	return f.statusFn(ctx, documentID)
}

func (f *fakeClient) FindSignerByEmail(ctx context.Context, email string) (*entity.Signer, error) {
	f.findCalls++
	return f.findFn(ctx, email)
}

func (f *fakeClient) CreateSigner(ctx context.Context, fullName, email string) (*entity.Signer, error) {
	f.createCalls++
	return f.createFn(ctx, fullName, email)
}

func (f *fakeClient) RequestSignature(ctx context.Context, documentID string, signerIDs []string) (string, error) {
	f.requestCalls++
	return f.requestFn(ctx, documentID, signerIDs)
}

func (f *fakeClient) DownloadCertificated(ctx context.Context, documentID, destPath string) bool {
	f.downloadCalls++
	if f.downloadFn == nil {
		return true
	}
	return f.downloadFn(ctx, documentID, destPath)
}

// fakeRepo implements repository.RentalRepository backed by a map.
type fakeRepo struct {
	rentals map[int64]*entity.Rental

	markSignedCalls   int
	setDocumentCalls  int
	markSignedErr     error
	setDocumentIDHook func(id int64, documentID string) error
}

func newFakeRepo(rentals ...*entity.Rental) *fakeRepo {
	m := make(map[int64]*entity.Rental)
	for _, r := range rentals {
		m[r.ID] = r
	}
	return &fakeRepo{rentals: m}
}

func (f *fakeRepo) Create(ctx context.Context, rental *entity.Rental) error {
	rental.ID = int64(len(f.rentals) + 1)
	f.rentals[rental.ID] = rental
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id int64) (*entity.Rental, error) {
	r, ok := f.rentals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *r
	return &clone, nil
}

func (f *fakeRepo) FindPendingSignatures(ctx context.Context) ([]*entity.Rental, error) {
	var out []*entity.Rental
	for _, r := range f.rentals {
		if !r.Signed() && r.DocumentID != "" {
			clone := *r
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindByPackageID(ctx context.Context, packageID string) (*entity.Rental, error) {
	for _, r := range f.rentals {
		if r.PackageID == packageID {
			clone := *r
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRepo) SetDocumentID(ctx context.Context, id int64, documentID string) error {
	f.setDocumentCalls++
	if f.setDocumentIDHook != nil {
		if err := f.setDocumentIDHook(id, documentID); err != nil {
			return err
		}
	}
	r, ok := f.rentals[id]
	if !ok {
		return repository.ErrNotFound
	}
	if r.DocumentID != "" {
		return repository.ErrDocumentIDSet
	}
	r.DocumentID = documentID
	return nil
}

func (f *fakeRepo) SetPackageID(ctx context.Context, id int64, packageID string) error {
	r, ok := f.rentals[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.PackageID = packageID
	return nil
}

func (f *fakeRepo) MarkSigned(ctx context.Context, id int64) (bool, error) {
	f.markSignedCalls++
	if f.markSignedErr != nil {
		return false, f.markSignedErr
	}
	r, ok := f.rentals[id]
	if !ok || r.Signed() {
		return false, nil
	}
	r.Status = entity.SignatureStatusSigned
	return true, nil
}

// fakeWaiter implements documentWaiter.
type fakeWaiter struct {
	ready bool
	calls int
}

func (f *fakeWaiter) WaitForReady(ctx context.Context, documentID string) bool {
	f.calls++
	return f.ready
}

// fakeResolver implements signerResolver.
type fakeResolver struct {
	signerID string
	err      error
	calls    int
}

func (f *fakeResolver) Resolve(ctx context.Context, fullName, email string) (string, error) {
	f.calls++
	return f.signerID, f.err
}

// fakeStore implements storage.Store rooted at base.
type fakeStore struct {
	base   string
	exists map[int64]bool
	saved  map[int64][]byte
}

func newFakeStore(base string) *fakeStore {
	return &fakeStore{
		base:   base,
		exists: make(map[int64]bool),
		saved:  make(map[int64][]byte),
	}
}

func (f *fakeStore) ContractPath(rentalID int64) string {
	return filepath.Join(f.base, "contratos", strconv.FormatInt(rentalID, 10)+".pdf")
}

func (f *fakeStore) SignedPath(rentalID int64) string {
	return filepath.Join(f.base, "contratos_assinados", strconv.FormatInt(rentalID, 10)+".pdf")
}

func (f *fakeStore) SaveContract(rentalID int64, content []byte) (string, error) {
	f.saved[rentalID] = content
	f.exists[rentalID] = true
	return f.ContractPath(rentalID), nil
}

func (f *fakeStore) ContractExists(rentalID int64) bool {
	return f.exists[rentalID]
}

func (f *fakeStore) SignedExists(rentalID int64) bool {
	return false
}

// fakeRenderer implements pdfgen.Renderer.
type fakeRenderer struct {
	calls int
}

func (f *fakeRenderer) Render(rental *entity.Rental) ([]byte, error) {
	f.calls++
	return []byte("%PDF-1.4 fake"), nil
}
