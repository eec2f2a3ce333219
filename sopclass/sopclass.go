// Package sopclass lists the SOP class UIDs the dispatch core routes on.
// The query/retrieve sets are normative: dispatch selects the service
// protocol by exact membership of the abstract syntax in these tables.
//
// https://www.dicomlibrary.com/dicom/sop/
package sopclass

// SOPUID pairs a SOP class keyword with its UID.
type SOPUID struct {
	Name string
	UID  string
}

// CompositeInstanceRetrieveWithoutBulkDataGet marks the C-GET variant that
// must strip bulk-data elements from every dataset before the C-STORE
// sub-operation.
const CompositeInstanceRetrieveWithoutBulkDataGet = "1.2.840.10008.5.1.4.1.2.5.3"

// For C-ECHO.
var VerificationClasses = []SOPUID{
	{"Verification", "1.2.840.10008.1.1"},
}

// For C-FIND.
var QRFindClasses = []SOPUID{
	{"PatientRootQueryRetrieveInformationModelFind", "1.2.840.10008.5.1.4.1.2.1.1"},
	{"StudyRootQueryRetrieveInformationModelFind", "1.2.840.10008.5.1.4.1.2.2.1"},
	{"PatientStudyOnlyQueryRetrieveInformationModelFind", "1.2.840.10008.5.1.4.1.2.3.1"},
	{"HangingProtocolInformationModelFind", "1.2.840.10008.5.1.4.20.1"},
	{"DefinedProcedureProtocolInformationModelFind", "1.2.840.10008.5.1.4.38.2"},
	{"ColorPaletteInformationModelFind", "1.2.840.10008.5.1.4.39.2"},
	{"GenericImplantTemplateInformationModelFind", "1.2.840.10008.5.1.4.43.2"},
	{"ImplantAssemblyTemplateInformationModelFind", "1.2.840.10008.5.1.4.44.2"},
	{"ImplantTemplateGroupInformationModelFind", "1.2.840.10008.5.1.4.45.2"},
	{"ProtocolApprovalInformationModelFind", "1.2.840.10008.5.1.4.1.1.200.4"},
}

// For C-GET.
var QRGetClasses = []SOPUID{
	{"PatientRootQueryRetrieveInformationModelGet", "1.2.840.10008.5.1.4.1.2.1.3"},
	{"StudyRootQueryRetrieveInformationModelGet", "1.2.840.10008.5.1.4.1.2.2.3"},
	{"PatientStudyOnlyQueryRetrieveInformationModelGet", "1.2.840.10008.5.1.4.1.2.3.3"},
	{"CompositeInstanceRootRetrieveGet", "1.2.840.10008.5.1.4.1.2.4.3"},
	{"CompositeInstanceRetrieveWithoutBulkDataGet", "1.2.840.10008.5.1.4.1.2.5.3"},
	{"HangingProtocolInformationModelGet", "1.2.840.10008.5.1.4.20.3"},
	{"DefinedProcedureProtocolInformationModelGet", "1.2.840.10008.5.1.4.38.4"},
	{"ColorPaletteInformationModelGet", "1.2.840.10008.5.1.4.39.4"},
	{"GenericImplantTemplateInformationModelGet", "1.2.840.10008.5.1.4.43.4"},
	{"ImplantAssemblyTemplateInformationModelGet", "1.2.840.10008.5.1.4.44.4"},
	{"ImplantTemplateGroupInformationModelGet", "1.2.840.10008.5.1.4.45.4"},
	{"ProtocolApprovalInformationModelGet", "1.2.840.10008.5.1.4.1.1.200.6"},
}

// For C-MOVE.
var QRMoveClasses = []SOPUID{
	{"PatientRootQueryRetrieveInformationModelMove", "1.2.840.10008.5.1.4.1.2.1.2"},
	{"StudyRootQueryRetrieveInformationModelMove", "1.2.840.10008.5.1.4.1.2.2.2"},
	{"PatientStudyOnlyQueryRetrieveInformationModelMove", "1.2.840.10008.5.1.4.1.2.3.2"},
	{"CompositeInstanceRootRetrieveMove", "1.2.840.10008.5.1.4.1.2.4.2"},
	{"HangingProtocolInformationModelMove", "1.2.840.10008.5.1.4.20.2"},
	{"DefinedProcedureProtocolInformationModelMove", "1.2.840.10008.5.1.4.38.3"},
	{"ColorPaletteInformationModelMove", "1.2.840.10008.5.1.4.39.3"},
	{"GenericImplantTemplateInformationModelMove", "1.2.840.10008.5.1.4.43.3"},
	{"ImplantAssemblyTemplateInformationModelMove", "1.2.840.10008.5.1.4.44.3"},
	{"ImplantTemplateGroupInformationModelMove", "1.2.840.10008.5.1.4.45.3"},
	{"ProtocolApprovalInformationModelMove", "1.2.840.10008.5.1.4.1.1.200.5"},
}

// Basic Worklist Management permits C-FIND only.
var BasicWorklistClasses = []SOPUID{
	{"ModalityWorklistInformationModelFind", "1.2.840.10008.5.1.4.31"},
}

// Relevant Patient Information Query permits only the single-match C-FIND
// variant.
var RelevantPatientQueryClasses = []SOPUID{
	{"GeneralRelevantPatientInformationQuery", "1.2.840.10008.5.1.4.37.1"},
	{"BreastImagingRelevantPatientInformationQuery", "1.2.840.10008.5.1.4.37.2"},
	{"CardiacRelevantPatientInformationQuery", "1.2.840.10008.5.1.4.37.3"},
}

// Substance Administration Query permits C-FIND only.
var SubstanceAdministrationQueryClasses = []SOPUID{
	{"ProductCharacteristicsQuery", "1.2.840.10008.5.1.4.41"},
	{"SubstanceApprovalQuery", "1.2.840.10008.5.1.4.42"},
}

// For C-STORE (and the C-STORE sub-operations of C-GET/C-MOVE).
var StorageClasses = []SOPUID{
	{"ComputedRadiographyImageStorage", "1.2.840.10008.5.1.4.1.1.1"},
	{"DigitalXRayImagePresentationStorage", "1.2.840.10008.5.1.4.1.1.1.1"},
	{"DigitalXRayImageProcessingStorage", "1.2.840.10008.5.1.4.1.1.1.1.1"},
	{"DigitalMammographyXRayImagePresentationStorage", "1.2.840.10008.5.1.4.1.1.1.2"},
	{"DigitalMammographyXRayImageProcessingStorage", "1.2.840.10008.5.1.4.1.1.1.2.1"},
	{"DigitalIntraOralXRayImagePresentationStorage", "1.2.840.10008.5.1.4.1.1.1.3"},
	{"CTImageStorage", "1.2.840.10008.5.1.4.1.1.2"},
	{"EnhancedCTImageStorage", "1.2.840.10008.5.1.4.1.1.2.1"},
	{"LegacyConvertedEnhancedCTImageStorage", "1.2.840.10008.5.1.4.1.1.2.2"},
	{"UltrasoundMultiframeImageStorage", "1.2.840.10008.5.1.4.1.1.3.1"},
	{"MRImageStorage", "1.2.840.10008.5.1.4.1.1.4"},
	{"EnhancedMRImageStorage", "1.2.840.10008.5.1.4.1.1.4.1"},
	{"MRSpectroscopyStorage", "1.2.840.10008.5.1.4.1.1.4.2"},
	{"EnhancedMRColorImageStorage", "1.2.840.10008.5.1.4.1.1.4.3"},
	{"LegacyConvertedEnhancedMRImageStorage", "1.2.840.10008.5.1.4.1.1.4.4"},
	{"UltrasoundImageStorage", "1.2.840.10008.5.1.4.1.1.6.1"},
	{"EnhancedUSVolumeStorage", "1.2.840.10008.5.1.4.1.1.6.2"},
	{"SecondaryCaptureImageStorage", "1.2.840.10008.5.1.4.1.1.7"},
	{"MultiframeSingleBitSecondaryCaptureImageStorage", "1.2.840.10008.5.1.4.1.1.7.1"},
	{"MultiframeGrayscaleByteSecondaryCaptureImageStorage", "1.2.840.10008.5.1.4.1.1.7.2"},
	{"MultiframeGrayscaleWordSecondaryCaptureImageStorage", "1.2.840.10008.5.1.4.1.1.7.3"},
	{"MultiframeTrueColorSecondaryCaptureImageStorage", "1.2.840.10008.5.1.4.1.1.7.4"},
	{"TwelveLeadECGWaveformStorage", "1.2.840.10008.5.1.4.1.1.9.1.1"},
	{"GeneralECGWaveformStorage", "1.2.840.10008.5.1.4.1.1.9.1.2"},
	{"AmbulatoryECGWaveformStorage", "1.2.840.10008.5.1.4.1.1.9.1.3"},
	{"HemodynamicWaveformStorage", "1.2.840.10008.5.1.4.1.1.9.2.1"},
	{"CardiacElectrophysiologyWaveformStorage", "1.2.840.10008.5.1.4.1.1.9.3.1"},
	{"BasicVoiceAudioWaveformStorage", "1.2.840.10008.5.1.4.1.1.9.4.1"},
	{"GeneralAudioWaveformStorage", "1.2.840.10008.5.1.4.1.1.9.4.2"},
	{"ArterialPulseWaveformStorage", "1.2.840.10008.5.1.4.1.1.9.5.1"},
	{"RespiratoryWaveformStorage", "1.2.840.10008.5.1.4.1.1.9.6.1"},
	{"GrayscaleSoftcopyPresentationStateStorage", "1.2.840.10008.5.1.4.1.1.11.1"},
	{"ColorSoftcopyPresentationStateStorage", "1.2.840.10008.5.1.4.1.1.11.2"},
	{"PseudocolorSoftcopyPresentationStateStorage", "1.2.840.10008.5.1.4.1.1.11.3"},
	{"BlendingSoftcopyPresentationStateStorage", "1.2.840.10008.5.1.4.1.1.11.4"},
	{"XAXRFGrayscaleSoftcopyPresentationStateStorage", "1.2.840.10008.5.1.4.1.1.11.5"},
	{"XRayAngiographicImageStorage", "1.2.840.10008.5.1.4.1.1.12.1"},
	{"EnhancedXAImageStorage", "1.2.840.10008.5.1.4.1.1.12.1.1"},
	{"XRayRadiofluoroscopicImageStorage", "1.2.840.10008.5.1.4.1.1.12.2"},
	{"EnhancedXRFImageStorage", "1.2.840.10008.5.1.4.1.1.12.2.1"},
	{"XRay3DAngiographicImageStorage", "1.2.840.10008.5.1.4.1.1.13.1.1"},
	{"XRay3DCraniofacialImageStorage", "1.2.840.10008.5.1.4.1.1.13.1.2"},
	{"BreastTomosynthesisImageStorage", "1.2.840.10008.5.1.4.1.1.13.1.3"},
	{"BreastProjectionXRayImagePresentationStorage", "1.2.840.10008.5.1.4.1.1.13.1.4"},
	{"BreastProjectionXRayImageProcessingStorage", "1.2.840.10008.5.1.4.1.1.13.1.5"},
	{"NuclearMedicineImageStorage", "1.2.840.10008.5.1.4.1.1.20"},
	{"ParametricMapStorage", "1.2.840.10008.5.1.4.1.1.30"},
	{"RawDataStorage", "1.2.840.10008.5.1.4.1.1.66"},
	{"SpatialRegistrationStorage", "1.2.840.10008.5.1.4.1.1.66.1"},
	{"SpatialFiducialsStorage", "1.2.840.10008.5.1.4.1.1.66.2"},
	{"DeformableSpatialRegistrationStorage", "1.2.840.10008.5.1.4.1.1.66.3"},
	{"SegmentationStorage", "1.2.840.10008.5.1.4.1.1.66.4"},
	{"SurfaceSegmentationStorage", "1.2.840.10008.5.1.4.1.1.66.5"},
	{"RealWorldValueMappingStorage", "1.2.840.10008.5.1.4.1.1.67"},
	{"SurfaceScanMeshStorage", "1.2.840.10008.5.1.4.1.1.68.1"},
	{"SurfaceScanPointCloudStorage", "1.2.840.10008.5.1.4.1.1.68.2"},
	{"VLEndoscopicImageStorage", "1.2.840.10008.5.1.4.1.1.77.1.1"},
	{"VideoEndoscopicImageStorage", "1.2.840.10008.5.1.4.1.1.77.1.1.1"},
	{"VLMicroscopicImageStorage", "1.2.840.10008.5.1.4.1.1.77.1.2"},
	{"VideoMicroscopicImageStorage", "1.2.840.10008.5.1.4.1.1.77.1.2.1"},
	{"VLSlideCoordinatesMicroscopicImageStorage", "1.2.840.10008.5.1.4.1.1.77.1.3"},
	{"VLPhotographicImageStorage", "1.2.840.10008.5.1.4.1.1.77.1.4"},
	{"VideoPhotographicImageStorage", "1.2.840.10008.5.1.4.1.1.77.1.4.1"},
	{"OphthalmicPhotography8BitImageStorage", "1.2.840.10008.5.1.4.1.1.77.1.5.1"},
	{"OphthalmicPhotography16BitImageStorage", "1.2.840.10008.5.1.4.1.1.77.1.5.2"},
	{"StereometricRelationshipStorage", "1.2.840.10008.5.1.4.1.1.77.1.5.3"},
	{"OphthalmicTomographyImageStorage", "1.2.840.10008.5.1.4.1.1.77.1.5.4"},
	{"VLWholeSlideMicroscopyImageStorage", "1.2.840.10008.5.1.4.1.1.77.1.6"},
	{"BasicTextSRStorage", "1.2.840.10008.5.1.4.1.1.88.11"},
	{"EnhancedSRStorage", "1.2.840.10008.5.1.4.1.1.88.22"},
	{"ComprehensiveSRStorage", "1.2.840.10008.5.1.4.1.1.88.33"},
	{"Comprehensive3DSRStorage", "1.2.840.10008.5.1.4.1.1.88.34"},
	{"ExtensibleSRStorage", "1.2.840.10008.5.1.4.1.1.88.35"},
	{"ProcedureLogStorage", "1.2.840.10008.5.1.4.1.1.88.40"},
	{"MammographyCADSRStorage", "1.2.840.10008.5.1.4.1.1.88.50"},
	{"KeyObjectSelectionDocumentStorage", "1.2.840.10008.5.1.4.1.1.88.59"},
	{"ChestCADSRStorage", "1.2.840.10008.5.1.4.1.1.88.65"},
	{"XRayRadiationDoseSRStorage", "1.2.840.10008.5.1.4.1.1.88.67"},
	{"RadiopharmaceuticalRadiationDoseSRStorage", "1.2.840.10008.5.1.4.1.1.88.68"},
	{"ColonCADSRStorage", "1.2.840.10008.5.1.4.1.1.88.69"},
	{"ImplantationPlanSRDocumentStorage", "1.2.840.10008.5.1.4.1.1.88.70"},
	{"EncapsulatedPDFStorage", "1.2.840.10008.5.1.4.1.1.104.1"},
	{"EncapsulatedCDAStorage", "1.2.840.10008.5.1.4.1.1.104.2"},
	{"PositronEmissionTomographyImageStorage", "1.2.840.10008.5.1.4.1.1.128"},
	{"LegacyConvertedEnhancedPETImageStorage", "1.2.840.10008.5.1.4.1.1.128.1"},
	{"EnhancedPETImageStorage", "1.2.840.10008.5.1.4.1.1.130"},
	{"BasicStructuredDisplayStorage", "1.2.840.10008.5.1.4.1.1.131"},
	{"RTImageStorage", "1.2.840.10008.5.1.4.1.1.481.1"},
	{"RTDoseStorage", "1.2.840.10008.5.1.4.1.1.481.2"},
	{"RTStructureSetStorage", "1.2.840.10008.5.1.4.1.1.481.3"},
	{"RTBeamsTreatmentRecordStorage", "1.2.840.10008.5.1.4.1.1.481.4"},
	{"RTPlanStorage", "1.2.840.10008.5.1.4.1.1.481.5"},
	{"RTBrachyTreatmentRecordStorage", "1.2.840.10008.5.1.4.1.1.481.6"},
	{"RTTreatmentSummaryRecordStorage", "1.2.840.10008.5.1.4.1.1.481.7"},
	{"RTIonPlanStorage", "1.2.840.10008.5.1.4.1.1.481.8"},
	{"RTIonBeamsTreatmentRecordStorage", "1.2.840.10008.5.1.4.1.1.481.9"},
	{"RTBeamsDeliveryInstructionStorage", "1.2.840.10008.5.1.4.34.7"},
	{"GenericImplantTemplateStorage", "1.2.840.10008.5.1.4.43.1"},
	{"ImplantAssemblyTemplateStorage", "1.2.840.10008.5.1.4.44.1"},
	{"ImplantTemplateGroupStorage", "1.2.840.10008.5.1.4.45.1"},
}

// UIDs flattens a SOP class table into its UID strings.
func UIDs(classes []SOPUID) []string {
	uids := make([]string, 0, len(classes))
	for _, c := range classes {
		uids = append(uids, c.UID)
	}
	return uids
}
