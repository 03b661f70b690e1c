package policy

import "github.com/ariebrainware/medibook/model"

// Operation catalogue. Owner ids passed to Authorize are user ids.
var (
	OpUsersList    = Operation{Name: "users.list", Kind: AdminOnly}
	OpUsersRead    = Operation{Name: "users.read", Kind: ReadOwn}
	OpUsersUpdate  = Operation{Name: "users.update", Kind: WriteOwn}
	OpUsersDisable = Operation{Name: "users.disable", Kind: AdminOnly}

	OpPatientsCreate = Operation{Name: "patients.create", Kind: WriteOwn}
	OpPatientsList   = Operation{Name: "patients.list", Kind: ReadAny, DoctorOnly: true}
	OpPatientsRead   = Operation{Name: "patients.read", Kind: ReadOwn, ReadAnyRoles: []model.Role{model.RoleDoctor}}
	OpPatientsUpdate = Operation{Name: "patients.update", Kind: WriteOwn}
	OpPatientsDelete = Operation{Name: "patients.delete", Kind: AdminOnly}

	OpDoctorsCreate = Operation{Name: "doctors.create", Kind: WriteOwn, DoctorOnly: true}
	OpDoctorsList   = Operation{Name: "doctors.list", Kind: ReadAny}
	OpDoctorsRead   = Operation{Name: "doctors.read", Kind: ReadAny}
	OpDoctorsUpdate = Operation{Name: "doctors.update", Kind: WriteOwn, DoctorOnly: true}
	OpDoctorsDelete = Operation{Name: "doctors.delete", Kind: AdminOnly}

	OpAppointmentsCreate     = Operation{Name: "appointments.create", Kind: WriteOwn, DoctorOnly: true}
	OpAppointmentsTransition = Operation{Name: "appointments.transition", Kind: WriteOwn, DoctorOnly: true}
	OpAppointmentsRead       = Operation{Name: "appointments.read", Kind: ReadOwn}
	OpAppointmentsList       = Operation{Name: "appointments.list", Kind: ReadAny}

	OpRecordsCreate = Operation{Name: "records.create", Kind: WriteOwn, DoctorOnly: true}
	OpRecordsRead   = Operation{Name: "records.read", Kind: ReadOwn}
	OpRecordsList   = Operation{Name: "records.list", Kind: ReadAny}
)

// Catalogue lists every operation, for documentation and tests.
var Catalogue = []Operation{
	OpUsersList, OpUsersRead, OpUsersUpdate, OpUsersDisable,
	OpPatientsCreate, OpPatientsList, OpPatientsRead, OpPatientsUpdate, OpPatientsDelete,
	OpDoctorsCreate, OpDoctorsList, OpDoctorsRead, OpDoctorsUpdate, OpDoctorsDelete,
	OpAppointmentsCreate, OpAppointmentsTransition, OpAppointmentsRead, OpAppointmentsList,
	OpRecordsCreate, OpRecordsRead, OpRecordsList,
}
