package services

import "github.com/sharebox/sharebox/internal/models"

func requireCaller(caller *models.User) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	return nil
}

func ownsFile(caller *models.User, file *models.File) bool {
	return caller != nil && file.OwnerID == caller.ID
}

// canRead reports whether caller may see file: public records are readable by
// anyone, private ones only by their owner.
func canRead(caller *models.User, file *models.File) bool {
	return file.IsPublic || ownsFile(caller, file)
}
