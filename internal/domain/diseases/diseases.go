package diseases

// Count is the number of conditions the classifier scores per image.
const Count = 14

// Names lists the scored thoracic conditions in classifier output order.
// The order is fixed by the pretrained model head and must never change.
var Names = [Count]string{
	"No Finding",
	"Enlarged Cardiomediastinum",
	"Cardiomegaly",
	"Lung Opacity",
	"Lung Lesion",
	"Edema",
	"Consolidation",
	"Pneumonia",
	"Atelectasis",
	"Pneumothorax",
	"Pleural Effusion",
	"Pleural Other",
	"Fracture",
	"Support Devices",
}

var nameSet = func() map[string]bool {
	m := make(map[string]bool, Count)
	for _, n := range Names {
		m[n] = true
	}
	return m
}()

// IsCanonical reports whether name is one of the scored conditions.
func IsCanonical(name string) bool {
	return nameSet[name]
}
